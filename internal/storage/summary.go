package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SummaryNotFound is the fixed digest text for a missing entity. Summarize
// returns it as a normal result, not an error.
const SummaryNotFound = "Entity not found."

// Summarize renders a human-readable digest for one entity: a title line,
// type and creation-date lines, then its top observations by importance.
func (s *Store) Summarize(ctx context.Context, entityID string) (string, error) {
	entity, err := s.getEntity(ctx, entityID)
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return SummaryNotFound, nil
	}
	if err != nil {
		return "", err
	}

	obs, err := s.topObservations(ctx, entityID, topObservationsPerEntity)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", entity.Name)
	fmt.Fprintf(&b, "Type: %s\n", entity.Type)
	fmt.Fprintf(&b, "Created: %s\n", entity.CreatedAt)

	if len(obs) > 0 {
		b.WriteString("\nTop observations:\n")
		for i, o := range obs {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, o.Type, o.Value)
			if o.Notes != "" {
				fmt.Fprintf(&b, "   %s\n", o.Notes)
			}
		}
	}

	return b.String(), nil
}
