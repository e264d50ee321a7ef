package storage

import (
	"context"
	"strings"

	"github.com/samber/oops"

	"knowstore/internal/models"
)

// Patch types model the per-kind allow-lists for partial updates. A nil
// field means "leave unchanged"; anything outside the struct simply cannot
// be expressed, so the allow-list holds at compile time.

// EntityPatch updates name, type and/or importance on an entity.
type EntityPatch struct {
	Name            *string
	Type            *string
	ImportanceScore *int
}

// ObservationPatch updates type, value, notes and/or importance on an
// observation.
type ObservationPatch struct {
	Type            *string
	Value           *string
	Notes           *string
	ImportanceScore *int
}

// RelationPatch updates type, importance and/or properties on a relation.
// A non-nil Properties replaces the whole map.
type RelationPatch struct {
	Type            *string
	ImportanceScore *int
	Properties      models.Properties
}

// UpdateEntity applies a partial update and returns the entity as it reads
// afterwards. An empty patch yields NoFieldsError; a missing id yields
// NotFoundError.
func (s *Store) UpdateEntity(ctx context.Context, id string, p EntityPatch) (*models.Entity, error) {
	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *p.Type)
	}
	if p.ImportanceScore != nil {
		sets = append(sets, "importance_score = ?")
		args = append(args, *p.ImportanceScore)
	}

	if err := s.applyUpdate(ctx, "entities", models.KindEntity, id, sets, args); err != nil {
		return nil, err
	}
	return s.getEntity(ctx, id)
}

// UpdateObservation applies a partial update and returns the observation as
// it reads afterwards.
func (s *Store) UpdateObservation(ctx context.Context, id string, p ObservationPatch) (*models.Observation, error) {
	var sets []string
	var args []any
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *p.Type)
	}
	if p.Value != nil {
		sets = append(sets, "value = ?")
		args = append(args, *p.Value)
	}
	if p.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *p.Notes)
	}
	if p.ImportanceScore != nil {
		sets = append(sets, "importance_score = ?")
		args = append(args, *p.ImportanceScore)
	}

	if err := s.applyUpdate(ctx, "observations", models.KindObservation, id, sets, args); err != nil {
		return nil, err
	}
	return s.getObservation(ctx, id)
}

// UpdateRelation applies a partial update and returns the relation as it
// reads afterwards. Properties are re-serialized on write.
func (s *Store) UpdateRelation(ctx context.Context, id string, p RelationPatch) (*models.Relation, error) {
	var sets []string
	var args []any
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *p.Type)
	}
	if p.ImportanceScore != nil {
		sets = append(sets, "importance_score = ?")
		args = append(args, *p.ImportanceScore)
	}
	if p.Properties != nil {
		raw, err := marshalProperties(p.Properties)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "properties = ?")
		args = append(args, raw)
	}

	if err := s.applyUpdate(ctx, "relations", models.KindRelation, id, sets, args); err != nil {
		return nil, err
	}
	return s.getRelation(ctx, id)
}

// applyUpdate issues the built UPDATE statement and maps its outcome to the
// error taxonomy.
func (s *Store) applyUpdate(ctx context.Context, table string, kind models.Kind, id string, sets []string, args []any) error {
	if len(sets) == 0 {
		return &NoFieldsError{}
	}
	n, err := s.Execute(ctx,
		"UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		append(args, id)...,
	)
	if err != nil {
		return oops.Errorf("update %s: %w", kind, err)
	}
	if n == 0 {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
