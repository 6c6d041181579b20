package types

import "strings"

// PropertyDescriptor is the synthesized documentation for one writable
// property. Children is populated when the property resolves to an
// object type; Elem when it resolves to an array whose element type
// could be resolved. A cyclic or unresolvable subtree leaves both empty.
type PropertyDescriptor struct {
	Required    bool
	KindLabel   string
	Description string
	Children    []PropertyEntry
	Elem        *PropertyDescriptor
}

// Text renders the descriptor's leaf form, e.g.
// "(Required) String Type. widget name".
func (d PropertyDescriptor) Text() string {
	requirement := "(Optional)"
	if d.Required {
		requirement = "(Required)"
	}
	return strings.TrimSpace(requirement + " " + d.KindLabel + ". " + d.Description)
}

// PropertyEntry pairs a property name with its descriptor, keeping the
// source declaration order of the walked object.
type PropertyEntry struct {
	Name       string
	Descriptor PropertyDescriptor
}

// ResourceSchema is the transient, fully synthesized documentation
// model for one resource type at one API version.
type ResourceSchema struct {
	TypeName       string
	APIVersion     string
	Scope          Scope
	ScopeBits      int
	ParentGuidance string
	Properties     []PropertyEntry
}

// ResourceType returns the schema's type name before the `@` separator.
func (s ResourceSchema) ResourceType() string {
	name, _, _ := strings.Cut(s.TypeName, "@")
	return name
}

// VersionRecord tracks the provider release backing a persisted schema
// map. LocalVersion is empty when no cache artifact exists yet.
type VersionRecord struct {
	LocalVersion    string
	UpstreamVersion string
}
