package core

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

const widgetTypes = `[
	{"$type":"ResourceType","name":"Foo.Bar/widgets@2023-01-01","scopeType":8,"body":{"$ref":"#/1"}},
	{"$type":"ObjectType","properties":{"name":{"type":{"$ref":"#/2"},"flags":1,"description":"widget name"}}},
	{"$type":"StringType"}
]`

func loadWidgetStore(t *testing.T) *Store {
	t.Helper()
	store, err := LoadStore(writeTypesFile(t, widgetTypes))
	require.NoError(t, err)
	return store
}

func TestSynthesizeWidgetScenario(t *testing.T) {
	store := loadWidgetStore(t)
	synthesizer := NewSynthesizer(store)

	resources := store.ResourceTypes()
	require.Len(t, resources, 1)

	schema, err := synthesizer.Synthesize(context.Background(), resources[0])
	require.NoError(t, err)

	assert.Equal(t, "Foo.Bar/widgets@2023-01-01", schema.TypeName)
	assert.Equal(t, "2023-01-01", schema.APIVersion)
	assert.Equal(t, types.ScopeResourceGroup, schema.Scope)
	assert.Contains(t, schema.ParentGuidance, "Microsoft.Resources/resourceGroups")

	require.Len(t, schema.Properties, 1)
	assert.Equal(t, "name", schema.Properties[0].Name)
	assert.Equal(t, "(Required) String Type. widget name", schema.Properties[0].Descriptor.Text())

	doc := synthesizer.Render(schema)
	assert.Contains(t, doc, "# Resource Type: Foo.Bar/widgets@2023-01-01")
	assert.Contains(t, doc, "API Version: 2023-01-01")
	assert.Contains(t, doc, "Parent resource type: Microsoft.Resources/resourceGroups")
	assert.Contains(t, doc, `resource "azapi_resource" "widget" {`)
	assert.Contains(t, doc, `name = "(Required) String Type. widget name"`)
	assert.Contains(t, doc, "The geo-location where the resource lives")
}

func TestRenderLocationFollowsResourceGroupBit(t *testing.T) {
	render := func(scopeBits int) string {
		t.Helper()
		content := fmt.Sprintf(`[
			{"$type":"ResourceType","name":"Foo.Bar/things@2023-01-01","scopeType":%d,"body":{"$ref":"#/1"}},
			{"$type":"ObjectType","properties":{}}
		]`, scopeBits)
		store, err := LoadStore(writeTypesFile(t, content))
		require.NoError(t, err)
		synthesizer := NewSynthesizer(store)

		schema, err := synthesizer.Synthesize(context.Background(), store.ResourceTypes()[0])
		require.NoError(t, err)
		assert.Equal(t, scopeBits, schema.ScopeBits)
		return synthesizer.Render(schema)
	}

	const locationLine = "The geo-location where the resource lives"

	// combined masks containing the resource-group bit still take a location
	assert.Contains(t, render(8), locationLine)
	assert.Contains(t, render(12), locationLine)
	assert.Contains(t, render(24), locationLine)

	assert.NotContains(t, render(1), locationLine)
	assert.NotContains(t, render(4), locationLine)
}

func TestSynthesizeRejectsNonResourceNode(t *testing.T) {
	store := loadWidgetStore(t)
	synthesizer := NewSynthesizer(store)

	_, err := synthesizer.Synthesize(context.Background(), IndexedNode{Index: 2, Node: types.TypeNode{Kind: types.TypeKindString}})
	require.Error(t, err)

	_, err = synthesizer.Synthesize(context.Background(), IndexedNode{Index: 0, Node: types.TypeNode{Kind: types.TypeKindResource}})
	require.Error(t, err)
}

func TestSynthesizeDanglingBodyRef(t *testing.T) {
	store := NewStore([]types.TypeNode{{
		Kind:      types.TypeKindResource,
		Name:      "Foo.Bar/widgets@2023-01-01",
		ScopeBits: 8,
		BodyRef:   types.Ref(42),
	}})
	synthesizer := NewSynthesizer(store)

	schema, err := synthesizer.Synthesize(context.Background(), store.ResourceTypes()[0])
	require.NoError(t, err)
	assert.Empty(t, schema.Properties)
}

func TestRenderIdempotence(t *testing.T) {
	store := loadWidgetStore(t)
	synthesizer := NewSynthesizer(store)
	resource := store.ResourceTypes()[0]

	first, err := synthesizer.Synthesize(context.Background(), resource)
	require.NoError(t, err)
	second, err := synthesizer.Synthesize(context.Background(), resource)
	require.NoError(t, err)

	if diff := cmp.Diff(synthesizer.Render(first), synthesizer.Render(second)); diff != "" {
		t.Fatalf("render not deterministic (-first +second):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// key ordering
// ---------------------------------------------------------------------------

func TestKeyRankTotalOrder(t *testing.T) {
	bucket := func(key string) int {
		b, _ := KeyRank(key)
		return b
	}
	assert.Less(t, bucket("__meta"), bucket("name"))
	assert.Less(t, bucket("name"), bucket("identity"))
	assert.Less(t, bucket("identity"), bucket("anything_else"))
	assert.Less(t, bucket("anything_else"), bucket("tags"))
}

func TestRenderOrderingLaw(t *testing.T) {
	tree := map[string]any{
		"zeta":      "z",
		"tags":      "last",
		"name":      "n",
		"identity":  "i",
		"sku":       "s",
		"location":  "l",
		"alpha":     "a",
		"type":      "t",
		"parent_id": "p",
		"__meta":    "dropped",
	}
	body := renderBody(tree, 0)
	lines := strings.Split(strings.TrimSpace(body), "\n")

	var keys []string
	for _, line := range lines {
		key, _, found := strings.Cut(strings.TrimSpace(line), " =")
		require.True(t, found)
		keys = append(keys, key)
	}

	assert.Equal(t, []string{
		"location", "name", "parent_id", "sku", "type",
		"identity",
		"alpha", "zeta",
		"tags",
	}, keys)
	assert.NotContains(t, body, "__meta")
}

func TestRenderOrderingAppliesToNestedObjects(t *testing.T) {
	tree := map[string]any{
		"body": map[string]any{
			"zeta": "z",
			"tags": "last",
			"name": "n",
		},
	}
	body := renderBody(tree, 0)
	nameIdx := strings.Index(body, "name =")
	zetaIdx := strings.Index(body, "zeta =")
	tagsIdx := strings.Index(body, "tags =")
	require.Greater(t, nameIdx, -1)
	assert.Less(t, nameIdx, zetaIdx)
	assert.Less(t, zetaIdx, tagsIdx)
}

// ---------------------------------------------------------------------------
// scalar rendering
// ---------------------------------------------------------------------------

func TestRenderValueScalars(t *testing.T) {
	assert.Equal(t, `"hello"`, renderValue("hello", 2))
	assert.Equal(t, "true", renderValue(true, 2))
	assert.Equal(t, "false", renderValue(false, 2))
	assert.Equal(t, "42", renderValue(42, 2))
	assert.Equal(t, "3.5", renderValue(3.5, 2))
	assert.Equal(t, "[]", renderValue([]any{}, 2))
	assert.Equal(t, `["a", "b"]`, renderValue([]any{"a", "b"}, 2))
	assert.Equal(t, "{}", renderValue(map[string]any{}, 2))
	assert.Equal(t, "null", renderValue(nil, 2))
}

func TestBlockLabelStripsOneTrailingS(t *testing.T) {
	assert.Equal(t, "widget", blockLabel("Foo.Bar/widgets"))
	// Exactly one trailing s, even for irregular plurals.
	assert.Equal(t, "addres", blockLabel("Foo.Bar/address"))
	assert.Equal(t, "vault", blockLabel("Foo.Bar/vault"))
}

func TestParentTypeHeader(t *testing.T) {
	assert.Equal(t, "Microsoft.Storage/storageAccounts",
		parentType("Microsoft.Storage/storageAccounts/tableServices", types.ScopeResourceGroup))
	assert.Equal(t, "Microsoft.Resources/resourceGroups",
		parentType("Foo.Bar/widgets", types.ScopeResourceGroup))
	assert.Equal(t, "Microsoft.Resources/resourceGroups",
		parentType("Foo.Bar/widgets", types.ScopeSubscription))
	assert.Equal(t, "", parentType("Foo.Bar/widgets", types.ScopeTenant))
}
