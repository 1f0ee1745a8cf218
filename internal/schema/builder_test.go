package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSDL = `
"""Test service"""
schema { query: Query mutation: Mutation }

type Query {
	hero(episode: Episode = NEWHOPE): Character
	search(filter: SearchFilter!): [SearchResult!]
	version: String! @deprecated(reason: "use meta.version")
}

type Mutation {
	rate(episode: Episode!, stars: Int!): Float
}

interface Character {
	id: ID!
	name: String!
	friends: [Character]
}

type Human implements Character {
	id: ID!
	name: String!
	friends: [Character]
	height(unit: LengthUnit = METER): Float
}

type Droid implements Character {
	id: ID!
	name: String!
	friends: [Character]
	primaryFunction: String
}

union SearchResult = Human | Droid

enum Episode {
	NEWHOPE
	EMPIRE
	JEDI
	CLONES @deprecated
}

enum LengthUnit { METER FOOT }

input SearchFilter {
	text: String!
	limit: Int = 10
	episodes: [Episode!]
}

scalar Date @specifiedBy(url: "https://example.com/date")
`

func buildTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	return s
}

func TestBuildRootTypes(t *testing.T) {
	s := buildTestSchema(t)

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Empty(t, s.SubscriptionType)
	require.Same(t, s.Types["Query"], s.RootType("query"))
	require.Same(t, s.Types["Mutation"], s.RootType("mutation"))
	require.Nil(t, s.RootType("subscription"))
}

func TestBuildObjectType(t *testing.T) {
	s := buildTestSchema(t)

	human := s.Types["Human"]
	require.NotNil(t, human)
	require.Equal(t, TypeKindObject, human.Kind)
	require.Equal(t, []string{"Character"}, human.Interfaces)
	require.True(t, human.Implements("Character"))

	id := human.Field("id")
	require.NotNil(t, id)
	require.Equal(t, "ID!", id.Type.String())
	require.True(t, id.Type.IsNonNull())
	require.Equal(t, "ID", id.Type.GetNamedType())

	friends := human.Field("friends")
	require.NotNil(t, friends)
	require.Equal(t, "[Character]", friends.Type.String())
	require.True(t, friends.Type.IsList())

	height := human.Field("height")
	require.NotNil(t, height)
	unit := height.Argument("unit")
	require.NotNil(t, unit)
	require.True(t, unit.HasDefault)
	require.Equal(t, "METER", unit.DefaultValue)
}

func TestBuildAbstractTypes(t *testing.T) {
	s := buildTestSchema(t)

	character := s.Types["Character"]
	require.Equal(t, TypeKindInterface, character.Kind)
	require.ElementsMatch(t, []string{"Human", "Droid"}, character.PossibleTypes)
	require.True(t, character.HasPossibleType("Droid"))
	require.False(t, character.HasPossibleType("Query"))

	result := s.Types["SearchResult"]
	require.Equal(t, TypeKindUnion, result.Kind)
	require.Equal(t, []string{"Human", "Droid"}, result.PossibleTypes)
}

func TestBuildEnumType(t *testing.T) {
	s := buildTestSchema(t)

	episode := s.Types["Episode"]
	require.Equal(t, TypeKindEnum, episode.Kind)
	require.True(t, episode.HasEnumValue("EMPIRE"))
	require.False(t, episode.HasEnumValue("PHANTOM"))

	var clones *EnumValue
	for _, v := range episode.EnumValues {
		if v.Name == "CLONES" {
			clones = v
		}
	}
	require.NotNil(t, clones)
	require.True(t, clones.IsDeprecated)
	require.Equal(t, "No longer supported", clones.DeprecationReason)
}

func TestBuildInputObjectType(t *testing.T) {
	s := buildTestSchema(t)

	filter := s.Types["SearchFilter"]
	require.Equal(t, TypeKindInputObject, filter.Kind)

	text := filter.InputField("text")
	require.NotNil(t, text)
	require.False(t, text.HasDefault)

	limit := filter.InputField("limit")
	require.NotNil(t, limit)
	require.True(t, limit.HasDefault)
	require.Equal(t, int64(10), limit.DefaultValue)

	episodes := filter.InputField("episodes")
	require.NotNil(t, episodes)
	require.Equal(t, "[Episode!]", episodes.Type.String())
}

func TestBuildScalarAndDeprecation(t *testing.T) {
	s := buildTestSchema(t)

	date := s.Types["Date"]
	require.Equal(t, TypeKindScalar, date.Kind)
	require.NotNil(t, date.SpecifiedByURL)
	require.Equal(t, "https://example.com/date", *date.SpecifiedByURL)

	version := s.Types["Query"].Field("version")
	require.True(t, version.IsDeprecated)
	require.Equal(t, "use meta.version", version.DeprecationReason)
}

func TestBuiltinsPresent(t *testing.T) {
	s := buildTestSchema(t)

	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		ty := s.Types[name]
		require.NotNil(t, ty, name)
		require.Equal(t, TypeKindScalar, ty.Kind)
	}
	require.NotNil(t, s.Directives["skip"])
	require.NotNil(t, s.Directives["include"])
}

func TestLiteralToJSON(t *testing.T) {
	s, err := BuildFromSDL("defaults.graphql", `
type Query { f(arg: In = {b: true, n: null, list: ["x", "y"], count: 1, ratio: 2.5}): Int }
input In { b: Boolean n: Int list: [String] count: Int ratio: Float }
`)
	require.NoError(t, err)

	arg := s.Types["Query"].Field("f").Argument("arg")
	require.True(t, arg.HasDefault)
	require.Equal(t, map[string]any{
		"b":     true,
		"n":     nil,
		"list":  []any{"x", "y"},
		"count": int64(1),
		"ratio": 2.5,
	}, arg.DefaultValue)
}
