package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"knowstore/internal/storage"
	"knowstore/internal/tools"
)

// New creates a fully configured MCP server with all tools registered.
func New(store *storage.Store) *mcp.Server {
	rt := &tools.RecordTools{Store: store}
	mt := &tools.ManageTools{Store: store}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "knowstore",
		Version: "0.1.0",
	}, nil)

	// Record creation and filtered reads
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_entity",
		Description: "Create a new entity (a named, typed thing to track)",
	}, rt.CreateEntity)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_entities",
		Description: "List entities, optionally filtered by type and minimum importance, ordered by importance",
	}, rt.GetEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_observation",
		Description: "Attach an importance-scored observation to an entity",
	}, rt.CreateObservation)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_observations",
		Description: "List observations, optionally filtered by entity and minimum importance",
	}, rt.GetObservations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_relation",
		Description: "Create a directed, typed relation between two entities with arbitrary properties",
	}, rt.CreateRelation)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_relations",
		Description: "List relations, optionally filtered by source entity and minimum importance",
	}, rt.GetRelations)

	// Mutation, search and summary
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_record",
		Description: "Partially update one record by kind and id; only supplied fields change",
	}, mt.UpdateRecord)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_records",
		Description: "Delete records by id, parent entity, or importance range, with optional cascade",
	}, mt.DeleteRecords)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_by_importance",
		Description: "Search one or all record kinds by minimum importance score",
	}, mt.SearchByImportance)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_entity_summary",
		Description: "Render a textual digest of an entity and its top observations",
	}, mt.GetEntitySummary)

	return srv
}
