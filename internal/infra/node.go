package infra

import (
	"sync/atomic"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// NodeJSON is the wire form of a UI snapshot node.
type NodeJSON struct {
	Text     string      `json:"text,omitempty"`
	Label    string      `json:"label,omitempty"`
	ViewID   string      `json:"view_id,omitempty"`
	Children []*NodeJSON `json:"children,omitempty"`
}

// JSONNode implements domain.UINode over a decoded snapshot.
// Once released, every accessor fails with domain.ErrNodeStale, which is
// how a snapshot owned by another process behaves after invalidation.
type JSONNode struct {
	data     *NodeJSON
	released atomic.Bool
}

// NewJSONNode wraps a decoded node. It returns nil for a nil node.
func NewJSONNode(data *NodeJSON) *JSONNode {
	if data == nil {
		return nil
	}
	return &JSONNode{data: data}
}

// Text returns the node's displayed text.
func (n *JSONNode) Text() (string, error) {
	if n.released.Load() {
		return "", domain.ErrNodeStale
	}
	return n.data.Text, nil
}

// Label returns the accessibility label.
func (n *JSONNode) Label() (string, error) {
	if n.released.Load() {
		return "", domain.ErrNodeStale
	}
	return n.data.Label, nil
}

// ViewID returns the view identifier.
func (n *JSONNode) ViewID() (string, error) {
	if n.released.Load() {
		return "", domain.ErrNodeStale
	}
	return n.data.ViewID, nil
}

// ChildCount returns the number of direct children.
func (n *JSONNode) ChildCount() (int, error) {
	if n.released.Load() {
		return 0, domain.ErrNodeStale
	}
	return len(n.data.Children), nil
}

// Child returns a new handle for the i-th child.
func (n *JSONNode) Child(i int) (domain.UINode, error) {
	if n.released.Load() {
		return nil, domain.ErrNodeStale
	}
	if i < 0 || i >= len(n.data.Children) {
		return nil, nil
	}
	c := n.data.Children[i]
	if c == nil {
		return nil, nil
	}
	return NewJSONNode(c), nil
}

// FindByViewID returns new handles for every node in the subtree whose
// view identifier equals id, in preorder.
func (n *JSONNode) FindByViewID(id string) ([]domain.UINode, error) {
	if n.released.Load() {
		return nil, domain.ErrNodeStale
	}

	var out []domain.UINode
	stack := []*NodeJSON{n.data}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.ViewID == id {
			out = append(out, NewJSONNode(cur))
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			if cur.Children[i] != nil {
				stack = append(stack, cur.Children[i])
			}
		}
	}
	return out, nil
}

// Release invalidates this handle.
func (n *JSONNode) Release() {
	n.released.Store(true)
}

// Ensure JSONNode implements domain.UINode.
var _ domain.UINode = (*JSONNode)(nil)
