package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"knowstore/internal/models"
	"knowstore/internal/storage"
)

// RecordTools holds references needed by the create/read tool handlers.
type RecordTools struct {
	Store *storage.Store
}

// --- Input types ---

type CreateEntityInput struct {
	Type            string `json:"type" jsonschema:"Entity type (e.g. person, place, technology)"`
	Name            string `json:"name" jsonschema:"Entity name"`
	ImportanceScore *int   `json:"importance_score,omitempty" jsonschema:"Importance 0-100, defaults to 50"`
}

type GetEntitiesInput struct {
	Type           string `json:"type,omitempty" jsonschema:"Only return entities of this type"`
	MinImportance  *int   `json:"min_importance,omitempty" jsonschema:"Only return entities with importance at or above this"`
	IncludeDetails bool   `json:"include_details,omitempty" jsonschema:"Include each entity's top observations"`
}

type CreateObservationInput struct {
	EntityID        string `json:"entity_id" jsonschema:"ID of the entity this observation belongs to"`
	Type            string `json:"type" jsonschema:"Observation type"`
	Value           string `json:"value" jsonschema:"Observation content"`
	Notes           string `json:"notes,omitempty" jsonschema:"Optional extra notes"`
	ImportanceScore *int   `json:"importance_score,omitempty" jsonschema:"Importance 0-100, defaults to 50"`
	Timestamp       *int64 `json:"timestamp,omitempty" jsonschema:"Unix seconds, defaults to now"`
}

type GetObservationsInput struct {
	EntityID       string `json:"entity_id,omitempty" jsonschema:"Only return observations of this entity"`
	MinImportance  *int   `json:"min_importance,omitempty" jsonschema:"Only return observations with importance at or above this"`
	IncludeDetails bool   `json:"include_details,omitempty" jsonschema:"Include the parent entity's name and type"`
}

type CreateRelationInput struct {
	SourceEntityID  string         `json:"source_entity_id" jsonschema:"ID of the source entity"`
	TargetEntityID  string         `json:"target_entity_id" jsonschema:"ID of the target entity"`
	Type            string         `json:"type" jsonschema:"Relation type in active voice (e.g. uses, manages)"`
	ImportanceScore *int           `json:"importance_score,omitempty" jsonschema:"Importance 0-100, defaults to 50"`
	Properties      map[string]any `json:"properties,omitempty" jsonschema:"Arbitrary key/value properties for the relation"`
}

type GetRelationsInput struct {
	SourceEntityID string `json:"source_entity_id,omitempty" jsonschema:"Only return relations from this source entity"`
	MinImportance  *int   `json:"min_importance,omitempty" jsonschema:"Only return relations with importance at or above this"`
	IncludeDetails bool   `json:"include_details,omitempty" jsonschema:"Include both endpoint entities' names and types"`
}

// --- Handlers ---

func (t *RecordTools) CreateEntity(ctx context.Context, _ *mcp.CallToolRequest, input CreateEntityInput) (*mcp.CallToolResult, any, error) {
	entity, err := t.Store.CreateEntity(ctx, input.Type, input.Name, input.ImportanceScore)
	if err != nil {
		return toolError("Failed to create entity: %v", err), nil, nil
	}
	return toolJSON(entity)
}

func (t *RecordTools) GetEntities(ctx context.Context, _ *mcp.CallToolRequest, input GetEntitiesInput) (*mcp.CallToolResult, any, error) {
	entities, err := t.Store.GetEntities(ctx, storage.EntityFilter{
		Type:           input.Type,
		MinImportance:  input.MinImportance,
		IncludeDetails: input.IncludeDetails,
	})
	if err != nil {
		return toolError("Failed to list entities: %v", err), nil, nil
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	return toolJSON(entities)
}

func (t *RecordTools) CreateObservation(ctx context.Context, _ *mcp.CallToolRequest, input CreateObservationInput) (*mcp.CallToolResult, any, error) {
	obs, err := t.Store.CreateObservation(ctx, storage.ObservationInput{
		EntityID:        input.EntityID,
		Type:            input.Type,
		Value:           input.Value,
		Notes:           input.Notes,
		ImportanceScore: input.ImportanceScore,
		Timestamp:       input.Timestamp,
	})
	if err != nil {
		return toolError("Failed to create observation: %v", err), nil, nil
	}
	return toolJSON(obs)
}

func (t *RecordTools) GetObservations(ctx context.Context, _ *mcp.CallToolRequest, input GetObservationsInput) (*mcp.CallToolResult, any, error) {
	obs, err := t.Store.GetObservations(ctx, storage.ObservationFilter{
		EntityID:       input.EntityID,
		MinImportance:  input.MinImportance,
		IncludeDetails: input.IncludeDetails,
	})
	if err != nil {
		return toolError("Failed to list observations: %v", err), nil, nil
	}
	if obs == nil {
		obs = []models.Observation{}
	}
	return toolJSON(obs)
}

func (t *RecordTools) CreateRelation(ctx context.Context, _ *mcp.CallToolRequest, input CreateRelationInput) (*mcp.CallToolResult, any, error) {
	rel, err := t.Store.CreateRelation(ctx, storage.RelationInput{
		SourceEntityID:  input.SourceEntityID,
		TargetEntityID:  input.TargetEntityID,
		Type:            input.Type,
		ImportanceScore: input.ImportanceScore,
		Properties:      input.Properties,
	})
	if err != nil {
		return toolError("Failed to create relation: %v", err), nil, nil
	}
	return toolJSON(rel)
}

func (t *RecordTools) GetRelations(ctx context.Context, _ *mcp.CallToolRequest, input GetRelationsInput) (*mcp.CallToolResult, any, error) {
	rels, err := t.Store.GetRelations(ctx, storage.RelationFilter{
		SourceEntityID: input.SourceEntityID,
		MinImportance:  input.MinImportance,
		IncludeDetails: input.IncludeDetails,
	})
	if err != nil {
		return toolError("Failed to list relations: %v", err), nil, nil
	}
	if rels == nil {
		rels = []models.Relation{}
	}
	return toolJSON(rels)
}

// --- Helpers ---

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
