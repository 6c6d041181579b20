package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Ref is an index into the type arena of one bicep types file. RefNone
// marks a missing or unparseable reference; callers resolve it fail-soft.
type Ref int

const RefNone Ref = -1

func (r Ref) Valid() bool { return r >= 0 }

// ParseRef parses the `#/<index>` reference syntax used by the bicep
// types graph. Anything malformed yields RefNone.
func ParseRef(value string) Ref {
	trimmed := strings.TrimPrefix(value, "#/")
	index, err := strconv.Atoi(trimmed)
	if err != nil || index < 0 {
		return RefNone
	}
	return Ref(index)
}

// PropertyNode is one declared property of an ObjectType.
type PropertyNode struct {
	Name        string
	Description string
	Flags       int
	TypeRef     Ref
}

func (p PropertyNode) Required() bool { return p.Flags&FlagRequired != 0 }
func (p PropertyNode) ReadOnly() bool { return p.Flags&FlagReadOnly != 0 }

// TypeNode is one node of the bicep types graph. It is a tagged union:
// only the fields matching Kind are populated. Nodes are owned by the
// store that decoded them and are never mutated afterwards.
type TypeNode struct {
	Kind TypeKind

	// ResourceType fields.
	Name      string
	ScopeBits int
	BodyRef   Ref

	// ObjectType fields, in source order.
	Properties []PropertyNode

	// ArrayType element reference.
	ItemRef Ref
}

// ResourceTypeName returns the name before the `@` separator.
func (n TypeNode) ResourceTypeName() string {
	name, _, _ := strings.Cut(n.Name, "@")
	return name
}

// APIVersion returns the version after the `@` separator, or "" when absent.
func (n TypeNode) APIVersion() string {
	_, version, _ := strings.Cut(n.Name, "@")
	return version
}

type refEnvelope struct {
	Ref string `json:"$ref"`
}

func (e refEnvelope) toRef() Ref {
	if e.Ref == "" {
		return RefNone
	}
	return ParseRef(e.Ref)
}

type propertyEnvelope struct {
	Type        refEnvelope `json:"type"`
	Flags       int         `json:"flags"`
	Description string      `json:"description"`
}

// UnmarshalJSON decodes one node of the types array. Malformed entries
// and unknown `$type` discriminators become TypeKindOther so a single
// bad node never fails the containing file.
func (n *TypeNode) UnmarshalJSON(data []byte) error {
	*n = TypeNode{Kind: TypeKindOther, BodyRef: RefNone, ItemRef: RefNone}

	var probe struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil
	}

	switch TypeKind(probe.Type) {
	case TypeKindResource:
		var raw struct {
			Name      string      `json:"name"`
			ScopeType int         `json:"scopeType"`
			Body      refEnvelope `json:"body"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		n.Kind = TypeKindResource
		n.Name = raw.Name
		n.ScopeBits = raw.ScopeType
		n.BodyRef = raw.Body.toRef()
	case TypeKindObject:
		var raw struct {
			Properties json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		n.Kind = TypeKindObject
		n.Properties = decodeOrderedProperties(raw.Properties)
	case TypeKindArray:
		var raw struct {
			ItemType refEnvelope `json:"itemType"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		n.Kind = TypeKindArray
		n.ItemRef = raw.ItemType.toRef()
	case TypeKindString, TypeKindInteger, TypeKindBoolean, TypeKindUnion:
		n.Kind = TypeKind(probe.Type)
	}
	return nil
}

// decodeOrderedProperties walks the properties object with a token
// decoder so declaration order survives; encoding/json maps would not
// keep it.
func decodeOrderedProperties(raw json.RawMessage) []PropertyNode {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var props []PropertyNode
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return props
		}
		name, ok := keyTok.(string)
		if !ok {
			return props
		}
		var envelope propertyEnvelope
		if err := dec.Decode(&envelope); err != nil {
			return props
		}
		props = append(props, PropertyNode{
			Name:        name,
			Description: envelope.Description,
			Flags:       envelope.Flags,
			TypeRef:     envelope.Type.toRef(),
		})
	}
	return props
}
