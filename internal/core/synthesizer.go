package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// Synthesizer composes a ResourceSchema from one ResourceType node and
// renders it to the documentation text block served to callers.
type Synthesizer struct {
	store  *Store
	walker Walker
}

func NewSynthesizer(store *Store) Synthesizer {
	return Synthesizer{store: store, walker: NewWalker(store)}
}

// Synthesize builds the schema for the resource type at the given
// arena index. Each call uses its own fresh visiting stack; nothing is
// shared across resource types.
func (s Synthesizer) Synthesize(ctx context.Context, resource IndexedNode) (types.ResourceSchema, error) {
	assert.NotNil(ctx, s.store, "synthesizer requires a store")

	node := resource.Node
	if node.Kind != types.TypeKindResource {
		return types.ResourceSchema{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("node %d is not a resource type", resource.Index))
	}
	if node.Name == "" {
		return types.ResourceSchema{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("resource type at index %d has no name", resource.Index))
	}

	visiting := []types.Ref{}
	schema := types.ResourceSchema{
		TypeName:       node.Name,
		APIVersion:     node.APIVersion(),
		Scope:          ClassifyScope(node.ScopeBits),
		ScopeBits:      node.ScopeBits,
		ParentGuidance: DeriveParentGuidance(node.Name, node.ScopeBits),
	}
	if node.BodyRef.Valid() {
		schema.Properties = s.walker.Walk(node.BodyRef, &visiting)
	}
	return schema, nil
}

// Render produces the documentation text for a synthesized schema:
// header lines followed by a pseudo-HCL azapi_resource block whose body
// follows the fixed key ordering.
func (s Synthesizer) Render(schema types.ResourceSchema) string {
	label := blockLabel(schema.ResourceType())

	root := map[string]any{
		"type":      schema.TypeName,
		"parent_id": schema.ParentGuidance,
		"body":      entriesToTree(schema.Properties),
	}
	// Keyed off the raw bitmask: multi-scope types deployable to a
	// resource group among other scopes still take a location.
	if schema.ScopeBits&types.ScopeBitResourceGroup != 0 {
		root["location"] = "(Required) String Type. The geo-location where the resource lives"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Resource Type: %s\n", schema.TypeName)
	fmt.Fprintf(&b, "API Version: %s\n", schema.APIVersion)
	fmt.Fprintf(&b, "Parent resource type: %s\n", parentType(schema.ResourceType(), schema.Scope))
	b.WriteString("A json-like Resource Schema reference:\n\n")
	fmt.Fprintf(&b, "```hcl\nresource \"azapi_resource\" \"%s\" {\n", label)
	b.WriteString(renderBody(root, 2))
	b.WriteString("}\n```\n")
	return b.String()
}

// blockLabel derives the HCL block label: last path segment with
// exactly one trailing `s` stripped. The naive singularization is
// load-bearing; downstream consumers match on its exact output.
func blockLabel(resourceType string) string {
	parts := strings.Split(resourceType, "/")
	last := parts[len(parts)-1]
	return strings.TrimSuffix(last, "s")
}

// parentType is the header's parent line: path with the last segment
// dropped for nested types, resource group for top-level types created
// in a resource group or subscription, empty otherwise.
func parentType(resourceType string, scope types.Scope) string {
	parts := strings.Split(resourceType, "/")
	if len(parts) > 2 {
		return strings.Join(parts[:len(parts)-1], "/")
	}
	if scope == types.ScopeResourceGroup || scope == types.ScopeSubscription {
		return "Microsoft.Resources/resourceGroups"
	}
	return ""
}

// entriesToTree converts walked property entries into the generic value
// tree the renderer understands: leaf descriptors become their text
// form, objects nest, arrays carry their (single) element schema.
func entriesToTree(entries []types.PropertyEntry) map[string]any {
	tree := map[string]any{}
	for _, entry := range entries {
		tree[entry.Name] = descriptorValue(entry.Descriptor)
	}
	return tree
}

func descriptorValue(desc types.PropertyDescriptor) any {
	switch {
	case desc.Children != nil:
		return entriesToTree(desc.Children)
	case desc.Elem != nil:
		return []any{descriptorValue(*desc.Elem)}
	default:
		return desc.Text()
	}
}

// Bucket ranks for the fixed rendering order. Dunder keys are dropped
// outright; everything else sorts by (bucket, key) so the order is a
// total order and directly testable.
const (
	bucketDunder    = 0
	bucketIdentity  = 30
	bucketIdentity2 = 50
	bucketDefault   = 100
	bucketTags      = 9999
)

// KeyRank returns the (bucket, key) sort tuple for one rendered key.
func KeyRank(key string) (int, string) {
	switch {
	case strings.HasPrefix(key, "__"):
		return bucketDunder, key
	case key == "name" || key == "type" || key == "parent_id" || key == "location" || key == "sku":
		return bucketIdentity, key
	case key == "identity":
		return bucketIdentity2, key
	case key == "tags":
		return bucketTags, key
	default:
		return bucketDefault, key
	}
}

func sortedKeys(tree map[string]any) []string {
	keys := make([]string, 0, len(tree))
	for key := range tree {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		bi, ki := KeyRank(keys[i])
		bj, kj := KeyRank(keys[j])
		if bi != bj {
			return bi < bj
		}
		return ki < kj
	})
	return keys
}

// renderBody renders the attribute lines of an object at the given
// indentation, applying the key ordering recursively.
func renderBody(tree map[string]any, indent int) string {
	var b strings.Builder
	for _, key := range sortedKeys(tree) {
		if strings.HasPrefix(key, "__") {
			continue
		}
		fmt.Fprintf(&b, "%s%s = %s\n", strings.Repeat(" ", indent), key, renderValue(tree[key], indent+2))
	}
	return b.String()
}

// renderValue renders one value: strings quoted, booleans lowercase,
// numbers literal, arrays comma-joined, nested objects as blocks, and
// anything unrecognized through a generic JSON fallback.
func renderValue(value any, indent int) string {
	switch v := value.(type) {
	case map[string]any:
		body := renderBody(v, indent)
		if body == "" {
			return "{}"
		}
		return "{\n" + body + strings.Repeat(" ", indent-2) + "}"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, renderValue(item, indent))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case nil:
		return "null"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
