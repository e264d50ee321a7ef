package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cascadeFixture creates entity E with observation O and relation R(E -> F),
// plus entity F.
func cascadeFixture(t *testing.T, s *Store) (e, f, o, r string) {
	t.Helper()
	ctx := context.Background()

	eEnt, err := s.CreateEntity(ctx, "person", "E", nil)
	require.NoError(t, err)
	fEnt, err := s.CreateEntity(ctx, "person", "F", nil)
	require.NoError(t, err)
	obs, err := s.CreateObservation(ctx, ObservationInput{EntityID: eEnt.ID, Type: "fact", Value: "v"})
	require.NoError(t, err)
	rel, err := s.CreateRelation(ctx, RelationInput{SourceEntityID: eEnt.ID, TargetEntityID: fEnt.ID, Type: "knows"})
	require.NoError(t, err)

	return eEnt.ID, fEnt.ID, obs.ID, rel.ID
}

func TestDeleteNoSelector(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var nse *NoSelectorError
	_, err := s.DeleteEntities(ctx, Selector{})
	require.ErrorAs(t, err, &nse)
	_, err = s.DeleteObservations(ctx, Selector{})
	require.ErrorAs(t, err, &nse)
	_, err = s.DeleteRelations(ctx, Selector{Cascade: true})
	require.ErrorAs(t, err, &nse)
}

func TestDeleteEntityCascade(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e, f, _, _ := cascadeFixture(t, s)

	res, err := s.DeleteEntities(ctx, Selector{ID: e, Cascade: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Entities)
	assert.Equal(t, int64(1), res.Observations)
	assert.Equal(t, int64(1), res.Relations)

	obs, err := s.GetObservations(ctx, ObservationFilter{EntityID: e})
	require.NoError(t, err)
	assert.Empty(t, obs)

	rels, err := s.GetRelations(ctx, RelationFilter{SourceEntityID: e})
	require.NoError(t, err)
	assert.Empty(t, rels)

	// F is untouched.
	_, err = s.getEntity(ctx, f)
	require.NoError(t, err)
}

func TestDeleteEntityNoCascade(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e, _, o, r := cascadeFixture(t, s)

	res, err := s.DeleteEntities(ctx, Selector{ID: e})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Entities)
	assert.Zero(t, res.Observations)
	assert.Zero(t, res.Relations)

	// Dependents remain with dangling references.
	obs, err := s.GetObservations(ctx, ObservationFilter{EntityID: e})
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, o, obs[0].ID)

	rels, err := s.GetRelations(ctx, RelationFilter{SourceEntityID: e})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, r, rels[0].ID)
}

func TestDeleteByIDNotFound(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var nf *NotFoundError
	_, err := s.DeleteEntities(ctx, Selector{ID: "entity_0_missing"})
	require.ErrorAs(t, err, &nf)
	_, err = s.DeleteObservations(ctx, Selector{ID: "obs_0_missing"})
	require.ErrorAs(t, err, &nf)
	_, err = s.DeleteRelations(ctx, Selector{ID: "rel_0_missing"})
	require.ErrorAs(t, err, &nf)
}

func TestDeleteObservationsByParent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEntity(ctx, "person", "Ada", nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.CreateObservation(ctx, ObservationInput{EntityID: e.ID, Type: "fact", Value: "v"})
		require.NoError(t, err)
	}

	res, err := s.DeleteObservations(ctx, Selector{EntityID: e.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Observations)
}

func TestDeleteByImportanceRange(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, score := range []int{10, 40, 60, 90} {
		_, err := s.CreateEntity(ctx, "thing", "e", intp(score))
		require.NoError(t, err)
	}

	// Closed range removes only the middle two.
	res, err := s.DeleteEntities(ctx, Selector{MinImportance: intp(20), MaxImportance: intp(80)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Entities)

	left, err := s.GetEntities(ctx, EntityFilter{})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, 90, left[0].ImportanceScore)
	assert.Equal(t, 10, left[1].ImportanceScore)
}

func TestDeleteRelationsCascadeCounterparts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e, err := s.CreateEntity(ctx, "person", "E", nil)
	require.NoError(t, err)
	f, err := s.CreateEntity(ctx, "person", "F", nil)
	require.NoError(t, err)
	g, err := s.CreateEntity(ctx, "person", "G", nil)
	require.NoError(t, err)

	_, err = s.CreateRelation(ctx, RelationInput{SourceEntityID: e.ID, TargetEntityID: f.ID, Type: "knows"})
	require.NoError(t, err)
	_, err = s.CreateRelation(ctx, RelationInput{SourceEntityID: g.ID, TargetEntityID: e.ID, Type: "knows"})
	require.NoError(t, err)

	res, err := s.DeleteRelations(ctx, Selector{EntityID: e.ID, Cascade: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Relations)
	assert.Equal(t, int64(2), res.Entities)

	// Counterparts F and G are gone; E itself survives.
	_, err = s.getEntity(ctx, e.ID)
	require.NoError(t, err)
	var nf *NotFoundError
	_, err = s.getEntity(ctx, f.ID)
	require.ErrorAs(t, err, &nf)
	_, err = s.getEntity(ctx, g.ID)
	require.ErrorAs(t, err, &nf)
}
