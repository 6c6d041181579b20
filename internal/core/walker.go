package core

import (
	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// Walker expands an object type's declared properties into descriptors.
// The visiting stack it threads through recursive calls is path-scoped:
// an index is rejected only while it is an ancestor on the current
// recursion path, so sibling reuse of the same type stays legal and
// recursion depth is bounded by the arena size.
type Walker struct {
	store *Store
}

func NewWalker(store *Store) Walker {
	return Walker{store: store}
}

// Walk expands the object at objectIndex. Cyclic or unresolvable
// indices degrade to an empty result, never an error.
func (w Walker) Walk(objectIndex types.Ref, visiting *[]types.Ref) []types.PropertyEntry {
	if onPath(*visiting, objectIndex) {
		return nil
	}
	node, ok := w.store.Resolve(objectIndex)
	if !ok || node.Kind != types.TypeKindObject {
		return nil
	}

	*visiting = append(*visiting, objectIndex)
	defer func() { *visiting = (*visiting)[:len(*visiting)-1] }()

	var entries []types.PropertyEntry
	for _, prop := range node.Properties {
		if prop.ReadOnly() {
			continue
		}
		entries = append(entries, types.PropertyEntry{
			Name:       prop.Name,
			Descriptor: w.describe(prop, visiting),
		})
	}
	return entries
}

// describe derives the coarse kind label for one property and, for
// object and array types, expands the nested structure under the same
// path guard.
func (w Walker) describe(prop types.PropertyNode, visiting *[]types.Ref) types.PropertyDescriptor {
	desc := types.PropertyDescriptor{
		Required:    prop.Required(),
		KindLabel:   "Property",
		Description: prop.Description,
	}

	node, ok := w.store.Resolve(prop.TypeRef)
	if !ok {
		return desc
	}

	switch node.Kind {
	case types.TypeKindString:
		desc.KindLabel = "String Type"
	case types.TypeKindInteger:
		desc.KindLabel = "Integer Type"
	case types.TypeKindBoolean:
		desc.KindLabel = "Boolean"
	case types.TypeKindArray:
		desc.KindLabel = "Array Type"
		desc.Elem = w.describeElement(node.ItemRef, visiting)
	case types.TypeKindObject:
		desc.KindLabel = "Object Type"
		desc.Children = w.Walk(prop.TypeRef, visiting)
	case types.TypeKindUnion:
		desc.KindLabel = "Union Type"
	default:
		desc.KindLabel = "Complex Type"
	}
	return desc
}

// describeElement resolves an array's element type one level. Elements
// that are objects expand recursively; scalar elements keep a label
// only; unresolvable or cyclic elements report nothing. Array indices
// join the visiting path here so chains of array references terminate
// the same way object cycles do.
func (w Walker) describeElement(itemRef types.Ref, visiting *[]types.Ref) *types.PropertyDescriptor {
	if onPath(*visiting, itemRef) {
		return nil
	}
	node, ok := w.store.Resolve(itemRef)
	if !ok {
		return nil
	}
	elem := types.PropertyDescriptor{KindLabel: "Property"}
	switch node.Kind {
	case types.TypeKindString:
		elem.KindLabel = "String Type"
	case types.TypeKindInteger:
		elem.KindLabel = "Integer Type"
	case types.TypeKindBoolean:
		elem.KindLabel = "Boolean"
	case types.TypeKindUnion:
		elem.KindLabel = "Union Type"
	case types.TypeKindArray:
		elem.KindLabel = "Array Type"
		*visiting = append(*visiting, itemRef)
		elem.Elem = w.describeElement(node.ItemRef, visiting)
		*visiting = (*visiting)[:len(*visiting)-1]
	case types.TypeKindObject:
		elem.KindLabel = "Object Type"
		elem.Children = w.Walk(itemRef, visiting)
	default:
		elem.KindLabel = "Complex Type"
	}
	return &elem
}

func onPath(visiting []types.Ref, index types.Ref) bool {
	for _, v := range visiting {
		if v == index {
			return true
		}
	}
	return false
}
