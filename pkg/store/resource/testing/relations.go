package testing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRelationTests covers relation types and relation lookups.
func (suite *StoreTestSuite) RunRelationTests(t *testing.T) {
	t.Run("RelationTypes", suite.testRelationTypes)
	t.Run("RelationsByDirection", suite.testRelationsByDirection)
	t.Run("RelateUnknownType", suite.testRelateUnknownType)
}

func (suite *StoreTestSuite) testRelationTypes(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	require.NoError(t, f.store.DefineRelationType(ctx, resource.RelationType{Name: "related"}))
	require.NoError(t, f.store.DefineRelationType(ctx, resource.RelationType{Name: "links", ContentDerived: true}))

	types, err := f.store.RelationTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []resource.RelationType{
		{Name: "links", ContentDerived: true},
		{Name: "related"},
	}, types)
}

func (suite *StoreTestSuite) testRelationsByDirection(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	require.NoError(t, f.store.DefineRelationType(ctx, resource.RelationType{Name: "related"}))
	forward := resource.Relation{SourceID: f.docA.ID, TargetID: f.docB.ID, Type: "related"}
	self := resource.Relation{SourceID: f.docA.ID, TargetID: f.docA.ID, Type: "related"}
	require.NoError(t, f.store.Relate(ctx, forward))
	require.NoError(t, f.store.Relate(ctx, forward))
	require.NoError(t, f.store.Relate(ctx, self))

	s := f.session(t, f.alice)

	out, err := s.Relations(ctx, f.docA.ID, resource.DirectionSource)
	require.NoError(t, err)
	assert.ElementsMatch(t, []resource.Relation{forward, self}, out)

	in, err := s.Relations(ctx, f.docB.ID, resource.DirectionTarget)
	require.NoError(t, err)
	assert.Equal(t, []resource.Relation{forward}, in)

	none, err := s.Relations(ctx, f.docB.ID, resource.DirectionSource)
	require.NoError(t, err)
	assert.Empty(t, none)

	both, err := s.Relations(ctx, f.docA.ID, resource.DirectionEither)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func (suite *StoreTestSuite) testRelateUnknownType(t *testing.T) {
	f := suite.newFixture(t)
	ctx := testContext()

	err := f.store.Relate(ctx, resource.Relation{SourceID: f.docA.ID, TargetID: f.docB.ID, Type: "nope"})
	assert.True(t, resource.IsNotFound(err))

	require.NoError(t, f.store.DefineRelationType(ctx, resource.RelationType{Name: "related"}))
	err = f.store.Relate(ctx, resource.Relation{SourceID: f.docA.ID, TargetID: uuid.New(), Type: "related"})
	assert.True(t, resource.IsNotFound(err))
}
