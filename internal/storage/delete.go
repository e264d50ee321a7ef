package storage

import (
	"context"
	"strings"

	"github.com/samber/oops"

	"knowstore/internal/models"
)

// Selector picks the rows a delete removes: a single id, a parent entity id,
// and/or an importance range. At least one criterion is required. Cascade
// widens entity and relation deletes per kind; observations never cascade.
type Selector struct {
	ID            string
	EntityID      string
	MinImportance *int
	MaxImportance *int
	Cascade       bool
}

func (sel Selector) empty() bool {
	return sel.ID == "" && sel.EntityID == "" && sel.MinImportance == nil && sel.MaxImportance == nil
}

// DeleteResult reports rows removed per kind, including cascade casualties.
type DeleteResult struct {
	Entities     int64 `json:"entities"`
	Observations int64 `json:"observations"`
	Relations    int64 `json:"relations"`
}

// DeleteEntities removes entities matched by the selector. With Cascade set
// it also removes their observations and every relation touching them. The
// cascade runs as a statement sequence, not a transaction: a crash mid-way
// can leave a partial delete, which is accepted.
func (s *Store) DeleteEntities(ctx context.Context, sel Selector) (*DeleteResult, error) {
	if sel.empty() {
		return nil, &NoSelectorError{}
	}

	var conds []string
	var args []any
	// For entities the parent id is the entity itself.
	id := sel.ID
	if id == "" {
		id = sel.EntityID
	}
	if id != "" {
		conds = append(conds, "id = ?")
		args = append(args, id)
	}
	appendImportanceRange(&conds, &args, sel)

	ids, err := s.collectIDs(ctx, "SELECT id FROM entities WHERE "+strings.Join(conds, " AND "), args)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if sel.ID != "" {
			return nil, &NotFoundError{Kind: models.KindEntity, ID: sel.ID}
		}
		return &DeleteResult{}, nil
	}

	res := &DeleteResult{}
	in, inArgs := inClause(ids)

	if sel.Cascade {
		n, err := s.Execute(ctx, "DELETE FROM observations WHERE entity_id IN ("+in+")", inArgs...)
		if err != nil {
			return nil, oops.Errorf("cascade observations: %w", err)
		}
		res.Observations = n

		relArgs := append(append([]any{}, inArgs...), inArgs...)
		n, err = s.Execute(ctx,
			"DELETE FROM relations WHERE source_entity_id IN ("+in+") OR target_entity_id IN ("+in+")",
			relArgs...,
		)
		if err != nil {
			return nil, oops.Errorf("cascade relations: %w", err)
		}
		res.Relations = n
	}

	n, err := s.Execute(ctx, "DELETE FROM entities WHERE id IN ("+in+")", inArgs...)
	if err != nil {
		return nil, oops.Errorf("delete entities: %w", err)
	}
	res.Entities = n
	return res, nil
}

// DeleteObservations removes observations matched by the selector. They have
// no dependents, so Cascade is ignored.
func (s *Store) DeleteObservations(ctx context.Context, sel Selector) (*DeleteResult, error) {
	if sel.empty() {
		return nil, &NoSelectorError{}
	}

	var conds []string
	var args []any
	if sel.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, sel.ID)
	}
	if sel.EntityID != "" {
		conds = append(conds, "entity_id = ?")
		args = append(args, sel.EntityID)
	}
	appendImportanceRange(&conds, &args, sel)

	n, err := s.Execute(ctx, "DELETE FROM observations WHERE "+strings.Join(conds, " AND "), args...)
	if err != nil {
		return nil, oops.Errorf("delete observations: %w", err)
	}
	if n == 0 && sel.ID != "" {
		return nil, &NotFoundError{Kind: models.KindObservation, ID: sel.ID}
	}
	return &DeleteResult{Observations: n}, nil
}

// DeleteRelations removes relations matched by the selector. A parent
// entity id matches relations where it appears as either endpoint. With
// Cascade set alongside EntityID, the counterpart entities on those
// relations are removed too; the given entity itself is kept.
func (s *Store) DeleteRelations(ctx context.Context, sel Selector) (*DeleteResult, error) {
	if sel.empty() {
		return nil, &NoSelectorError{}
	}

	var conds []string
	var args []any
	if sel.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, sel.ID)
	}
	if sel.EntityID != "" {
		conds = append(conds, "(source_entity_id = ? OR target_entity_id = ?)")
		args = append(args, sel.EntityID, sel.EntityID)
	}
	appendImportanceRange(&conds, &args, sel)
	where := strings.Join(conds, " AND ")

	res := &DeleteResult{}

	var counterparts []string
	if sel.Cascade && sel.EntityID != "" {
		rows, err := s.FetchMany(ctx, "SELECT source_entity_id, target_entity_id FROM relations WHERE "+where, args...)
		if err != nil {
			return nil, oops.Errorf("query relation endpoints: %w", err)
		}
		seen := map[string]bool{}
		for rows.Next() {
			var src, tgt string
			if err := rows.Scan(&src, &tgt); err != nil {
				rows.Close()
				return nil, oops.Errorf("scan relation endpoints: %w", err)
			}
			for _, other := range []string{src, tgt} {
				if other != sel.EntityID && !seen[other] {
					seen[other] = true
					counterparts = append(counterparts, other)
				}
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	n, err := s.Execute(ctx, "DELETE FROM relations WHERE "+where, args...)
	if err != nil {
		return nil, oops.Errorf("delete relations: %w", err)
	}
	if n == 0 && sel.ID != "" {
		return nil, &NotFoundError{Kind: models.KindRelation, ID: sel.ID}
	}
	res.Relations = n

	if len(counterparts) > 0 {
		in, inArgs := inClause(counterparts)
		n, err := s.Execute(ctx, "DELETE FROM entities WHERE id IN ("+in+")", inArgs...)
		if err != nil {
			return nil, oops.Errorf("cascade counterpart entities: %w", err)
		}
		res.Entities = n
	}

	return res, nil
}

// appendImportanceRange adds the optional importance bounds to a predicate
// list.
func appendImportanceRange(conds *[]string, args *[]any, sel Selector) {
	if sel.MinImportance != nil {
		*conds = append(*conds, "importance_score >= ?")
		*args = append(*args, *sel.MinImportance)
	}
	if sel.MaxImportance != nil {
		*conds = append(*conds, "importance_score <= ?")
		*args = append(*args, *sel.MaxImportance)
	}
}

// collectIDs runs an id query and gathers the results.
func (s *Store) collectIDs(ctx context.Context, query string, args []any) ([]string, error) {
	rows, err := s.FetchMany(ctx, query, args...)
	if err != nil {
		return nil, oops.Errorf("collect ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, oops.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// inClause builds a placeholder list and matching args for an IN predicate.
func inClause(ids []string) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
