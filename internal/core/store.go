package core

import (
	"encoding/json"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/stemaMSFT/tf-mcp-server-sub000/internal/types"
)

// Store is the arena-indexed, read-only collection of type nodes for
// one bicep types file. It lives for a single synthesis pass.
type Store struct {
	nodes []types.TypeNode
}

// IndexedNode is a node together with its arena index, so selections
// can be walked back through the reference graph.
type IndexedNode struct {
	Index int
	Node  types.TypeNode
}

func NewStore(nodes []types.TypeNode) *Store {
	return &Store{nodes: nodes}
}

// LoadStore reads one types file. Files whose top level is not a JSON
// array are rejected; individual malformed nodes decode to Other and
// do not fail the load.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read types file").
			WithCause(err)
	}
	var nodes []types.TypeNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("types file is not a JSON array of nodes").
			WithCause(err)
	}
	return NewStore(nodes), nil
}

// Len returns the arena size.
func (s *Store) Len() int { return len(s.nodes) }

// Resolve is a pure index lookup. Out-of-range or invalid references
// report ok=false; callers degrade to an empty value rather than abort.
func (s *Store) Resolve(ref types.Ref) (types.TypeNode, bool) {
	if !ref.Valid() || int(ref) >= len(s.nodes) {
		return types.TypeNode{Kind: types.TypeKindOther}, false
	}
	return s.nodes[int(ref)], true
}

// ResourceTypes returns every ResourceType node with its index, in
// arena order.
func (s *Store) ResourceTypes() []IndexedNode {
	var out []IndexedNode
	for i, node := range s.nodes {
		if node.Kind == types.TypeKindResource {
			out = append(out, IndexedNode{Index: i, Node: node})
		}
	}
	return out
}
