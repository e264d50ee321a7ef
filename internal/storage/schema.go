package storage

// Schema is the SQL schema for the knowledge store, applied idempotently at
// open. The REFERENCES clauses on observations and relations are advisory
// only: the foreign_keys pragma is left off, so deleting an entity never
// touches dependent rows unless the caller asks for a cascade.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
    id               TEXT PRIMARY KEY,
    type             TEXT NOT NULL,
    name             TEXT NOT NULL,
    importance_score INTEGER NOT NULL DEFAULT 50,
    created_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS observations (
    id               TEXT PRIMARY KEY,
    entity_id        TEXT NOT NULL REFERENCES entities(id),
    type             TEXT NOT NULL,
    value            TEXT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    importance_score INTEGER NOT NULL DEFAULT 50,
    timestamp        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS relations (
    id               TEXT PRIMARY KEY,
    source_entity_id TEXT NOT NULL REFERENCES entities(id),
    target_entity_id TEXT NOT NULL REFERENCES entities(id),
    type             TEXT NOT NULL,
    importance_score INTEGER NOT NULL DEFAULT 50,
    properties       TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);
CREATE INDEX IF NOT EXISTS idx_entities_importance ON entities(importance_score DESC);
CREATE INDEX IF NOT EXISTS idx_observations_entity ON observations(entity_id);
CREATE INDEX IF NOT EXISTS idx_observations_importance ON observations(importance_score DESC, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_entity_id);
CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_entity_id);
CREATE INDEX IF NOT EXISTS idx_relations_importance ON relations(importance_score DESC);
`
