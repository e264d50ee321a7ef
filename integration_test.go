package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"knowstore/internal/models"
	"knowstore/internal/server"
	"knowstore/internal/storage"
)

// setupIntegration creates a real MCP server with in-memory transport and returns a connected client session.
func setupIntegration(t *testing.T) *mcp.ClientSession {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "knowstore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := server.New(store)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return session
}

// callTool is a helper that calls a tool and returns the text content.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	return tc.Text
}

// callToolExpectError calls a tool and expects an error response (IsError=true).
func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): protocol error: %v", name, err)
	}
	if !result.IsError {
		tc := result.Content[0].(*mcp.TextContent)
		t.Fatalf("CallTool(%s): expected error but got success: %s", name, tc.Text)
	}
	tc := result.Content[0].(*mcp.TextContent)
	return tc.Text
}

func TestIntegration_ListTools(t *testing.T) {
	session := setupIntegration(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	expectedTools := []string{
		"create_entity", "get_entities",
		"create_observation", "get_observations",
		"create_relation", "get_relations",
		"update_record", "delete_records",
		"search_by_importance", "get_entity_summary",
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("missing tool %q", name)
		}
	}
	if len(result.Tools) != len(expectedTools) {
		t.Errorf("expected %d tools, got %d", len(expectedTools), len(result.Tools))
	}
}

func TestIntegration_RecordLifecycle(t *testing.T) {
	session := setupIntegration(t)

	// Create an entity and parse it back.
	text := callTool(t, session, "create_entity", map[string]any{
		"type": "person", "name": "Ada",
	})
	var entity models.Entity
	if err := json.Unmarshal([]byte(text), &entity); err != nil {
		t.Fatalf("parse entity: %v", err)
	}
	if entity.ID == "" || entity.ImportanceScore != 50 {
		t.Fatalf("unexpected entity: %+v", entity)
	}

	// Attach an observation.
	text = callTool(t, session, "create_observation", map[string]any{
		"entity_id": entity.ID, "type": "fact", "value": "wrote the first program",
		"importance_score": 90,
	})
	var obs models.Observation
	if err := json.Unmarshal([]byte(text), &obs); err != nil {
		t.Fatalf("parse observation: %v", err)
	}

	// A second entity and a relation with properties.
	text = callTool(t, session, "create_entity", map[string]any{
		"type": "machine", "name": "Analytical Engine",
	})
	var target models.Entity
	if err := json.Unmarshal([]byte(text), &target); err != nil {
		t.Fatal(err)
	}
	text = callTool(t, session, "create_relation", map[string]any{
		"source_entity_id": entity.ID,
		"target_entity_id": target.ID,
		"type":             "programs",
		"properties":       map[string]any{"weight": 3, "tags": []string{"a", "b"}},
	})
	var rel models.Relation
	if err := json.Unmarshal([]byte(text), &rel); err != nil {
		t.Fatal(err)
	}
	if rel.Properties["weight"] != float64(3) {
		t.Errorf("properties did not round-trip: %+v", rel.Properties)
	}

	// Summary digest includes the entity name and top observation.
	summary := callTool(t, session, "get_entity_summary", map[string]any{"entity_id": entity.ID})
	if !strings.Contains(summary, "=== Ada ===") || !strings.Contains(summary, "wrote the first program") {
		t.Errorf("unexpected summary: %q", summary)
	}

	// Partial update changes only importance.
	text = callTool(t, session, "update_record", map[string]any{
		"kind": "entity", "id": entity.ID, "importance_score": 99,
	})
	var updated models.Entity
	if err := json.Unmarshal([]byte(text), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.ImportanceScore != 99 || updated.Name != "Ada" {
		t.Errorf("partial update broke fields: %+v", updated)
	}

	// Cascade delete removes the observation and relation, keeps the target.
	text = callTool(t, session, "delete_records", map[string]any{
		"kind": "entity", "id": entity.ID, "cascade": true,
	})
	var res storage.DeleteResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatal(err)
	}
	if res.Entities != 1 || res.Observations != 1 || res.Relations != 1 {
		t.Errorf("unexpected delete counts: %+v", res)
	}

	text = callTool(t, session, "get_entities", map[string]any{})
	var remaining []models.Entity
	if err := json.Unmarshal([]byte(text), &remaining); err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ID != target.ID {
		t.Errorf("expected only target entity, got %+v", remaining)
	}
}

func TestIntegration_SearchByImportance(t *testing.T) {
	session := setupIntegration(t)

	for _, score := range []int{20, 60, 80} {
		callTool(t, session, "create_entity", map[string]any{
			"type": "thing", "name": "e", "importance_score": score,
		})
	}

	text := callTool(t, session, "search_by_importance", map[string]any{"min_score": 60})
	var results storage.SearchResults
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		t.Fatal(err)
	}
	if len(results.Entities) != 2 {
		t.Errorf("expected 2 entities above threshold, got %d", len(results.Entities))
	}
	if len(results.Observations) != 0 || len(results.Relations) != 0 {
		t.Errorf("expected empty observation/relation lists: %+v", results)
	}
}

func TestIntegration_ErrorRendering(t *testing.T) {
	session := setupIntegration(t)

	// Domain errors come back as IsError text, never protocol faults.
	text := callToolExpectError(t, session, "create_entity", map[string]any{"type": "person", "name": ""})
	if !strings.Contains(text, "name") {
		t.Errorf("expected validation message about name, got %q", text)
	}

	text = callToolExpectError(t, session, "update_record", map[string]any{
		"kind": "gadget", "id": "x", "name": "y",
	})
	if !strings.Contains(text, "Unknown kind") {
		t.Errorf("unexpected message: %q", text)
	}

	text = callToolExpectError(t, session, "update_record", map[string]any{
		"kind": "entity", "id": "entity_0_missing", "name": "y",
	})
	if !strings.Contains(text, "not found") {
		t.Errorf("unexpected message: %q", text)
	}

	text = callToolExpectError(t, session, "delete_records", map[string]any{"kind": "entity"})
	if !strings.Contains(text, "selector") {
		t.Errorf("unexpected message: %q", text)
	}

	// A missing entity summary is a fixed text, not an error.
	summary := callTool(t, session, "get_entity_summary", map[string]any{"entity_id": "entity_0_missing"})
	if summary != storage.SummaryNotFound {
		t.Errorf("expected fixed not-found text, got %q", summary)
	}
}
