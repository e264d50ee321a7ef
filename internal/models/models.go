package models

// Kind identifies one of the three record kinds in the store.
type Kind string

const (
	KindEntity      Kind = "entity"
	KindObservation Kind = "observation"
	KindRelation    Kind = "relation"
)

// ParseKind maps a wire-level kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindEntity, KindObservation, KindRelation:
		return Kind(s), true
	}
	return "", false
}

// Properties is the open key/value map attached to a relation. Values are
// any JSON-representable scalar, array, or nested object.
type Properties map[string]any

// Entity represents a named, typed thing being tracked. Observations is
// populated only for detailed reads.
type Entity struct {
	ID              string        `json:"id"`
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	ImportanceScore int           `json:"importance_score"`
	CreatedAt       string        `json:"created_at"`
	Observations    []Observation `json:"observations,omitempty"`
}

// Observation represents a timestamped, importance-scored fact attached to
// one entity. EntityName/EntityType are populated only for detailed reads.
type Observation struct {
	ID              string `json:"id"`
	EntityID        string `json:"entity_id"`
	Type            string `json:"type"`
	Value           string `json:"value"`
	Notes           string `json:"notes"`
	ImportanceScore int    `json:"importance_score"`
	Timestamp       int64  `json:"timestamp"`
	EntityName      string `json:"entity_name,omitempty"`
	EntityType      string `json:"entity_type,omitempty"`
}

// Relation represents a directed, typed edge between two entities. The
// endpoint name/type fields are populated only for detailed reads.
type Relation struct {
	ID              string     `json:"id"`
	SourceEntityID  string     `json:"source_entity_id"`
	TargetEntityID  string     `json:"target_entity_id"`
	Type            string     `json:"type"`
	ImportanceScore int        `json:"importance_score"`
	Properties      Properties `json:"properties"`
	SourceName      string     `json:"source_name,omitempty"`
	SourceType      string     `json:"source_type,omitempty"`
	TargetName      string     `json:"target_name,omitempty"`
	TargetType      string     `json:"target_type,omitempty"`
}
