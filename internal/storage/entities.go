package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/samber/oops"

	"knowstore/internal/models"
)

// topObservationsPerEntity bounds the observations joined into a detailed
// entity read and the summary digest.
const topObservationsPerEntity = 5

// EntityFilter narrows an entity list. Zero values mean "no predicate".
type EntityFilter struct {
	Type           string
	MinImportance  *int
	IncludeDetails bool
}

// CreateEntity inserts a new entity and returns it as persisted.
func (s *Store) CreateEntity(ctx context.Context, typ, name string, importance *int) (*models.Entity, error) {
	if typ == "" {
		return nil, validationf("entity requires a type")
	}
	if name == "" {
		return nil, validationf("entity requires a name")
	}

	id := newID("entity")
	_, err := s.Execute(ctx,
		`INSERT INTO entities (id, type, name, importance_score) VALUES (?, ?, ?, ?)`,
		id, typ, name, defaultScore(importance),
	)
	if err != nil {
		return nil, oops.Errorf("insert entity: %w", err)
	}

	return s.getEntity(ctx, id)
}

// GetEntities lists entities matching the filter, most important first.
// With IncludeDetails set, each entity carries its top observations by
// importance; this issues one supplementary query per row.
func (s *Store) GetEntities(ctx context.Context, f EntityFilter) ([]models.Entity, error) {
	query := `SELECT id, type, name, importance_score, created_at FROM entities`
	var conds []string
	var args []any
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.MinImportance != nil {
		conds = append(conds, "importance_score >= ?")
		args = append(args, *f.MinImportance)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY importance_score DESC"

	rows, err := s.FetchMany(ctx, query, args...)
	if err != nil {
		return nil, oops.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(&e.ID, &e.Type, &e.Name, &e.ImportanceScore, &e.CreatedAt); err != nil {
			return nil, oops.Errorf("scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if f.IncludeDetails {
		for i := range entities {
			obs, err := s.topObservations(ctx, entities[i].ID, topObservationsPerEntity)
			if err != nil {
				return nil, err
			}
			entities[i].Observations = obs
		}
	}

	return entities, nil
}

// getEntity loads a single entity by id.
func (s *Store) getEntity(ctx context.Context, id string) (*models.Entity, error) {
	var e models.Entity
	err := s.FetchOne(ctx,
		`SELECT id, type, name, importance_score, created_at FROM entities WHERE id = ?`, id,
	).Scan(&e.ID, &e.Type, &e.Name, &e.ImportanceScore, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: models.KindEntity, ID: id}
	}
	if err != nil {
		return nil, oops.Errorf("scan entity: %w", err)
	}
	return &e, nil
}

// topObservations loads an entity's highest-importance observations.
func (s *Store) topObservations(ctx context.Context, entityID string, limit int) ([]models.Observation, error) {
	rows, err := s.FetchMany(ctx,
		`SELECT id, entity_id, type, value, notes, importance_score, timestamp
		 FROM observations WHERE entity_id = ?
		 ORDER BY importance_score DESC, timestamp DESC LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, oops.Errorf("query top observations: %w", err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.EntityID, &o.Type, &o.Value, &o.Notes, &o.ImportanceScore, &o.Timestamp); err != nil {
			return nil, oops.Errorf("scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}
