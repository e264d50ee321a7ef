package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"knowstore/internal/models"
	"knowstore/internal/storage"
)

// ManageTools holds references needed by the update/delete/search/summary
// tool handlers.
type ManageTools struct {
	Store *storage.Store
}

// --- Input types ---

type UpdateRecordInput struct {
	Kind            string         `json:"kind" jsonschema:"Record kind: entity, observation, or relation"`
	ID              string         `json:"id" jsonschema:"ID of the record to update"`
	Name            *string        `json:"name,omitempty" jsonschema:"New name (entities only)"`
	Type            *string        `json:"type,omitempty" jsonschema:"New type"`
	Value           *string        `json:"value,omitempty" jsonschema:"New value (observations only)"`
	Notes           *string        `json:"notes,omitempty" jsonschema:"New notes (observations only)"`
	ImportanceScore *int           `json:"importance_score,omitempty" jsonschema:"New importance 0-100"`
	Properties      map[string]any `json:"properties,omitempty" jsonschema:"Replacement properties map (relations only)"`
}

type DeleteRecordsInput struct {
	Kind          string `json:"kind" jsonschema:"Record kind: entity, observation, or relation"`
	ID            string `json:"id,omitempty" jsonschema:"Delete the single record with this ID"`
	EntityID      string `json:"entity_id,omitempty" jsonschema:"Delete records belonging to (or touching) this entity"`
	MinImportance *int   `json:"min_importance,omitempty" jsonschema:"Delete records with importance at or above this"`
	MaxImportance *int   `json:"max_importance,omitempty" jsonschema:"Delete records with importance at or below this"`
	Cascade       bool   `json:"cascade,omitempty" jsonschema:"Also delete dependent records"`
}

type SearchByImportanceInput struct {
	MinScore       int    `json:"min_score" jsonschema:"Minimum importance score"`
	Kind           string `json:"kind,omitempty" jsonschema:"Restrict to one kind; omit to search all three"`
	IncludeDetails bool   `json:"include_details,omitempty" jsonschema:"Include detailed projections"`
}

type EntitySummaryInput struct {
	EntityID string `json:"entity_id" jsonschema:"ID of the entity to summarize"`
}

// --- Handlers ---

func (t *ManageTools) UpdateRecord(ctx context.Context, _ *mcp.CallToolRequest, input UpdateRecordInput) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return toolError("Record id is required"), nil, nil
	}
	kind, ok := models.ParseKind(input.Kind)
	if !ok {
		return toolError("Unknown kind %q (use entity, observation, or relation)", input.Kind), nil, nil
	}

	// Fields outside the kind's allow-list are filtered out here; if nothing
	// survives, the store reports NoFieldsError.
	var (
		updated any
		err     error
	)
	switch kind {
	case models.KindEntity:
		updated, err = t.Store.UpdateEntity(ctx, input.ID, storage.EntityPatch{
			Name:            input.Name,
			Type:            input.Type,
			ImportanceScore: input.ImportanceScore,
		})
	case models.KindObservation:
		updated, err = t.Store.UpdateObservation(ctx, input.ID, storage.ObservationPatch{
			Type:            input.Type,
			Value:           input.Value,
			Notes:           input.Notes,
			ImportanceScore: input.ImportanceScore,
		})
	case models.KindRelation:
		updated, err = t.Store.UpdateRelation(ctx, input.ID, storage.RelationPatch{
			Type:            input.Type,
			ImportanceScore: input.ImportanceScore,
			Properties:      input.Properties,
		})
	}
	if err != nil {
		return toolError("Failed to update %s: %v", kind, err), nil, nil
	}
	return toolJSON(updated)
}

func (t *ManageTools) DeleteRecords(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordsInput) (*mcp.CallToolResult, any, error) {
	kind, ok := models.ParseKind(input.Kind)
	if !ok {
		return toolError("Unknown kind %q (use entity, observation, or relation)", input.Kind), nil, nil
	}

	sel := storage.Selector{
		ID:            input.ID,
		EntityID:      input.EntityID,
		MinImportance: input.MinImportance,
		MaxImportance: input.MaxImportance,
		Cascade:       input.Cascade,
	}

	var (
		result *storage.DeleteResult
		err    error
	)
	switch kind {
	case models.KindEntity:
		result, err = t.Store.DeleteEntities(ctx, sel)
	case models.KindObservation:
		result, err = t.Store.DeleteObservations(ctx, sel)
	case models.KindRelation:
		result, err = t.Store.DeleteRelations(ctx, sel)
	}
	if err != nil {
		return toolError("Failed to delete %ss: %v", kind, err), nil, nil
	}
	return toolJSON(result)
}

func (t *ManageTools) SearchByImportance(ctx context.Context, _ *mcp.CallToolRequest, input SearchByImportanceInput) (*mcp.CallToolResult, any, error) {
	var kind models.Kind
	if input.Kind != "" {
		var ok bool
		kind, ok = models.ParseKind(input.Kind)
		if !ok {
			return toolError("Unknown kind %q (use entity, observation, or relation)", input.Kind), nil, nil
		}
	}

	results, err := t.Store.SearchByImportance(ctx, input.MinScore, kind, input.IncludeDetails)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	return toolJSON(results)
}

func (t *ManageTools) GetEntitySummary(ctx context.Context, _ *mcp.CallToolRequest, input EntitySummaryInput) (*mcp.CallToolResult, any, error) {
	if input.EntityID == "" {
		return toolError("entity_id is required"), nil, nil
	}

	summary, err := t.Store.Summarize(ctx, input.EntityID)
	if err != nil {
		return toolError("Failed to summarize entity: %v", err), nil, nil
	}
	return toolText(summary), nil, nil
}
