package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"

	"knowstore/internal/models"
)

// ObservationFilter narrows an observation list.
type ObservationFilter struct {
	EntityID       string
	MinImportance  *int
	IncludeDetails bool
}

// ObservationInput carries the fields for a new observation. EntityID, Type
// and Value are required; the rest default per the data model.
type ObservationInput struct {
	EntityID        string
	Type            string
	Value           string
	Notes           string
	ImportanceScore *int
	Timestamp       *int64
}

// CreateObservation inserts a new observation and returns it as persisted.
// The entity reference is soft: no existence check is made, matching the
// advisory foreign keys in the schema.
func (s *Store) CreateObservation(ctx context.Context, in ObservationInput) (*models.Observation, error) {
	if in.EntityID == "" {
		return nil, validationf("observation requires an entity_id")
	}
	if in.Type == "" {
		return nil, validationf("observation requires a type")
	}
	if in.Value == "" {
		return nil, validationf("observation requires a value")
	}

	ts := time.Now().Unix()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	id := newID("obs")
	_, err := s.Execute(ctx,
		`INSERT INTO observations (id, entity_id, type, value, notes, importance_score, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.EntityID, in.Type, in.Value, in.Notes, defaultScore(in.ImportanceScore), ts,
	)
	if err != nil {
		return nil, oops.Errorf("insert observation: %w", err)
	}

	return s.getObservation(ctx, id)
}

// GetObservations lists observations matching the filter, ordered by
// importance then recency. With IncludeDetails set, each row joins its
// parent entity's name and type; dangling references leave both empty.
func (s *Store) GetObservations(ctx context.Context, f ObservationFilter) ([]models.Observation, error) {
	cols := `o.id, o.entity_id, o.type, o.value, o.notes, o.importance_score, o.timestamp`
	query := `SELECT ` + cols + ` FROM observations o`
	if f.IncludeDetails {
		query = `SELECT ` + cols + `, e.name, e.type FROM observations o LEFT JOIN entities e ON e.id = o.entity_id`
	}

	var conds []string
	var args []any
	if f.EntityID != "" {
		conds = append(conds, "o.entity_id = ?")
		args = append(args, f.EntityID)
	}
	if f.MinImportance != nil {
		conds = append(conds, "o.importance_score >= ?")
		args = append(args, *f.MinImportance)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY o.importance_score DESC, o.timestamp DESC"

	rows, err := s.FetchMany(ctx, query, args...)
	if err != nil {
		return nil, oops.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if f.IncludeDetails {
			var entityName, entityType sql.NullString
			if err := rows.Scan(&o.ID, &o.EntityID, &o.Type, &o.Value, &o.Notes, &o.ImportanceScore, &o.Timestamp, &entityName, &entityType); err != nil {
				return nil, oops.Errorf("scan observation: %w", err)
			}
			o.EntityName = entityName.String
			o.EntityType = entityType.String
		} else {
			if err := rows.Scan(&o.ID, &o.EntityID, &o.Type, &o.Value, &o.Notes, &o.ImportanceScore, &o.Timestamp); err != nil {
				return nil, oops.Errorf("scan observation: %w", err)
			}
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// getObservation loads a single observation by id.
func (s *Store) getObservation(ctx context.Context, id string) (*models.Observation, error) {
	var o models.Observation
	err := s.FetchOne(ctx,
		`SELECT id, entity_id, type, value, notes, importance_score, timestamp FROM observations WHERE id = ?`, id,
	).Scan(&o.ID, &o.EntityID, &o.Type, &o.Value, &o.Notes, &o.ImportanceScore, &o.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: models.KindObservation, ID: id}
	}
	if err != nil {
		return nil, oops.Errorf("scan observation: %w", err)
	}
	return &o, nil
}
