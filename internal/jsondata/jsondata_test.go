package jsondata

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/executor"
	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/schema"
)

const testSDL = `
type Query {
  hero: Character
  friends: [Character]
  count: Int
  rating: Float
  tags: [String]
  missing: String
}

interface Character {
  id: ID!
  name: String
}

type Human implements Character {
  id: ID!
  name: String
  height: Float
}

type Droid implements Character {
  id: ID!
  name: String
  primaryFunction: String
}
`

const testDocument = `{
	"hero": {"__typename": "Human", "id": 1000, "name": "Luke", "height": 1.72},
	"friends": [
		{"__typename": "Human", "id": 1002, "name": "Han"},
		null,
		{"__typename": "Droid", "id": 2001, "name": "R2-D2", "primaryFunction": "Astromech"}
	],
	"count": 3,
	"rating": 4.5,
	"tags": ["rebel", "jedi"]
}`

func execute(t *testing.T, query string) *executor.Response {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	root, err := NewRoot(sch, "Query", []byte(testDocument))
	require.NoError(t, err)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
}

func TestResolveFromDocument(t *testing.T) {
	resp := execute(t, `{
		hero { __typename id name }
		count
		rating
		tags
		missing
	}`)
	require.Empty(t, resp.Errors)

	want := map[string]any{
		"hero": map[string]any{
			"__typename": "Human",
			"id":         "1000",
			"name":       "Luke",
		},
		"count":   int64(3),
		"rating":  4.5,
		"tags":    []any{"rebel", "jedi"},
		"missing": nil,
	}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAbstractDispatch(t *testing.T) {
	resp := execute(t, `{
		friends {
			name
			... on Human { height }
			... on Droid { primaryFunction }
		}
	}`)
	require.Empty(t, resp.Errors)

	want := map[string]any{
		"friends": []any{
			map[string]any{"name": "Han", "height": nil},
			nil,
			map[string]any{"name": "R2-D2", "primaryFunction": "Astromech"},
		},
	}
	if diff := cmp.Diff(want, resp.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidInputs(t *testing.T) {
	sch, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)

	_, err = NewRoot(sch, "Query", []byte(`{"broken"`))
	require.ErrorContains(t, err, "not valid JSON")

	_, err = NewRoot(sch, "Nope", []byte(`{}`))
	require.ErrorContains(t, err, `unknown type "Nope"`)

	_, err = NewRoot(sch, "Query", []byte(`[1, 2]`))
	require.ErrorContains(t, err, "must be a JSON object")
}
