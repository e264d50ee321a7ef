package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowstore/internal/models"
)

func TestUpdateEntityPartial(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEntity(ctx, "person", "Ada", nil)
	require.NoError(t, err)

	updated, err := s.UpdateEntity(ctx, e.ID, EntityPatch{ImportanceScore: intp(95)})
	require.NoError(t, err)

	assert.Equal(t, 95, updated.ImportanceScore)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "person", updated.Type)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
}

func TestUpdateObservationPartial(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	o, err := s.CreateObservation(ctx, ObservationInput{
		EntityID: "e1", Type: "fact", Value: "original", Notes: "keep me",
	})
	require.NoError(t, err)

	updated, err := s.UpdateObservation(ctx, o.ID, ObservationPatch{Value: strp("revised")})
	require.NoError(t, err)

	assert.Equal(t, "revised", updated.Value)
	assert.Equal(t, "keep me", updated.Notes)
	assert.Equal(t, o.Timestamp, updated.Timestamp)
}

func TestUpdateRelationProperties(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	r, err := s.CreateRelation(ctx, RelationInput{
		SourceEntityID: "a", TargetEntityID: "b", Type: "knows",
		Properties: models.Properties{"since": "1840"},
	})
	require.NoError(t, err)

	updated, err := s.UpdateRelation(ctx, r.ID, RelationPatch{
		Properties: models.Properties{"weight": 7},
	})
	require.NoError(t, err)

	// Properties replace wholesale and re-serialize on write.
	assert.Equal(t, models.Properties{"weight": float64(7)}, updated.Properties)
	assert.Equal(t, "knows", updated.Type)
}

func TestUpdateNoFields(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEntity(ctx, "person", "Ada", nil)
	require.NoError(t, err)

	var nfe *NoFieldsError
	_, err = s.UpdateEntity(ctx, e.ID, EntityPatch{})
	require.ErrorAs(t, err, &nfe)
	_, err = s.UpdateObservation(ctx, "obs_0_x", ObservationPatch{})
	require.ErrorAs(t, err, &nfe)
	_, err = s.UpdateRelation(ctx, "rel_0_x", RelationPatch{})
	require.ErrorAs(t, err, &nfe)
}

func TestUpdateNotFound(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var nf *NotFoundError
	_, err := s.UpdateEntity(ctx, "entity_0_missing", EntityPatch{Name: strp("x")})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, models.KindEntity, nf.Kind)

	_, err = s.UpdateObservation(ctx, "obs_0_missing", ObservationPatch{Value: strp("x")})
	require.ErrorAs(t, err, &nf)

	_, err = s.UpdateRelation(ctx, "rel_0_missing", RelationPatch{Type: strp("x")})
	require.ErrorAs(t, err, &nf)
}
