package storage

import (
	"context"

	"knowstore/internal/models"
)

// SearchResults holds the per-kind lists from an importance search. Only the
// requested kinds are populated.
type SearchResults struct {
	Entities     []models.Entity      `json:"entities,omitempty"`
	Observations []models.Observation `json:"observations,omitempty"`
	Relations    []models.Relation    `json:"relations,omitempty"`
}

// SearchByImportance returns records at or above minScore. With kind empty
// it runs the list operation for all three kinds under the same threshold
// and details flag; otherwise only the named kind is searched.
func (s *Store) SearchByImportance(ctx context.Context, minScore int, kind models.Kind, includeDetails bool) (*SearchResults, error) {
	res := &SearchResults{}
	var err error

	if kind == "" || kind == models.KindEntity {
		res.Entities, err = s.GetEntities(ctx, EntityFilter{MinImportance: &minScore, IncludeDetails: includeDetails})
		if err != nil {
			return nil, err
		}
	}
	if kind == "" || kind == models.KindObservation {
		res.Observations, err = s.GetObservations(ctx, ObservationFilter{MinImportance: &minScore, IncludeDetails: includeDetails})
		if err != nil {
			return nil, err
		}
	}
	if kind == "" || kind == models.KindRelation {
		res.Relations, err = s.GetRelations(ctx, RelationFilter{MinImportance: &minScore, IncludeDetails: includeDetails})
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}
