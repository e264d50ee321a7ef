package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/oops"

	"knowstore/internal/models"
)

// RelationFilter narrows a relation list.
type RelationFilter struct {
	SourceEntityID string
	MinImportance  *int
	IncludeDetails bool
}

// RelationInput carries the fields for a new relation. Source, target and
// type are required; Properties defaults to an empty map.
type RelationInput struct {
	SourceEntityID  string
	TargetEntityID  string
	Type            string
	ImportanceScore *int
	Properties      models.Properties
}

// CreateRelation inserts a new directed edge and returns it as persisted.
// Endpoint references are soft, like observation entity references.
func (s *Store) CreateRelation(ctx context.Context, in RelationInput) (*models.Relation, error) {
	if in.SourceEntityID == "" {
		return nil, validationf("relation requires a source_entity_id")
	}
	if in.TargetEntityID == "" {
		return nil, validationf("relation requires a target_entity_id")
	}
	if in.Type == "" {
		return nil, validationf("relation requires a type")
	}

	props := in.Properties
	if props == nil {
		props = models.Properties{}
	}
	raw, err := marshalProperties(props)
	if err != nil {
		return nil, err
	}

	id := newID("rel")
	_, err = s.Execute(ctx,
		`INSERT INTO relations (id, source_entity_id, target_entity_id, type, importance_score, properties)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.SourceEntityID, in.TargetEntityID, in.Type, defaultScore(in.ImportanceScore), raw,
	)
	if err != nil {
		return nil, oops.Errorf("insert relation: %w", err)
	}

	return s.getRelation(ctx, id)
}

// GetRelations lists relations matching the filter, most important first.
// With IncludeDetails set, each row joins both endpoint entities' names and
// types; dangling endpoints leave them empty.
func (s *Store) GetRelations(ctx context.Context, f RelationFilter) ([]models.Relation, error) {
	cols := `r.id, r.source_entity_id, r.target_entity_id, r.type, r.importance_score, r.properties`
	query := `SELECT ` + cols + ` FROM relations r`
	if f.IncludeDetails {
		query = `SELECT ` + cols + `, src.name, src.type, tgt.name, tgt.type
		 FROM relations r
		 LEFT JOIN entities src ON src.id = r.source_entity_id
		 LEFT JOIN entities tgt ON tgt.id = r.target_entity_id`
	}

	var conds []string
	var args []any
	if f.SourceEntityID != "" {
		conds = append(conds, "r.source_entity_id = ?")
		args = append(args, f.SourceEntityID)
	}
	if f.MinImportance != nil {
		conds = append(conds, "r.importance_score >= ?")
		args = append(args, *f.MinImportance)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.importance_score DESC"

	rows, err := s.FetchMany(ctx, query, args...)
	if err != nil {
		return nil, oops.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	var rels []models.Relation
	for rows.Next() {
		var r models.Relation
		var raw string
		if f.IncludeDetails {
			var srcName, srcType, tgtName, tgtType sql.NullString
			if err := rows.Scan(&r.ID, &r.SourceEntityID, &r.TargetEntityID, &r.Type, &r.ImportanceScore, &raw, &srcName, &srcType, &tgtName, &tgtType); err != nil {
				return nil, oops.Errorf("scan relation: %w", err)
			}
			r.SourceName = srcName.String
			r.SourceType = srcType.String
			r.TargetName = tgtName.String
			r.TargetType = tgtType.String
		} else {
			if err := rows.Scan(&r.ID, &r.SourceEntityID, &r.TargetEntityID, &r.Type, &r.ImportanceScore, &raw); err != nil {
				return nil, oops.Errorf("scan relation: %w", err)
			}
		}
		if r.Properties, err = unmarshalProperties(r.ID, raw); err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// getRelation loads a single relation by id.
func (s *Store) getRelation(ctx context.Context, id string) (*models.Relation, error) {
	var r models.Relation
	var raw string
	err := s.FetchOne(ctx,
		`SELECT id, source_entity_id, target_entity_id, type, importance_score, properties FROM relations WHERE id = ?`, id,
	).Scan(&r.ID, &r.SourceEntityID, &r.TargetEntityID, &r.Type, &r.ImportanceScore, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: models.KindRelation, ID: id}
	}
	if err != nil {
		return nil, oops.Errorf("scan relation: %w", err)
	}
	if r.Properties, err = unmarshalProperties(r.ID, raw); err != nil {
		return nil, err
	}
	return &r, nil
}

// marshalProperties serializes a properties map for storage.
func marshalProperties(props models.Properties) (string, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return "", oops.Errorf("serialize properties: %w", err)
	}
	return string(raw), nil
}

// unmarshalProperties parses a stored properties column. A parse failure
// means the row no longer holds what the engine wrote, so it surfaces as
// corruption rather than defaulting to an empty map.
func unmarshalProperties(relationID, raw string) (models.Properties, error) {
	if raw == "" {
		return models.Properties{}, nil
	}
	var props models.Properties
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, oops.Errorf("corrupt properties on relation %s: %w", relationID, err)
	}
	return props, nil
}
