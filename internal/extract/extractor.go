// Package extract recovers the address displayed by a browser from an
// accessibility snapshot it does not own.
package extract

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// DefaultMaxDepth bounds the fallback search. The root is depth 0.
const DefaultMaxDepth = 15

const (
	minTargetedLen = 4 // targeted hits must be longer than 3 characters
	minFallbackLen = 6 // fallback hits must be longer than 5 characters
)

// Extractor implements domain.AddressExtractor.
// Targeted view-ID probes run first, then a depth-bounded tree search.
type Extractor struct {
	hints    *HintTable
	maxDepth int
	logger   *zap.Logger
}

// New creates an extractor with the default hint table and depth bound.
func New(logger *zap.Logger) *Extractor {
	return NewWithDepth(DefaultMaxDepth, logger)
}

// NewWithDepth creates an extractor with a custom depth bound.
func NewWithDepth(maxDepth int, logger *zap.Logger) *Extractor {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Extractor{
		hints:    NewHintTable(),
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// MaxDepth returns the fallback depth bound.
func (e *Extractor) MaxDepth() int {
	return e.maxDepth
}

// Extract returns the first qualifying address in root.
func (e *Extractor) Extract(appID string, root domain.UINode) (string, bool) {
	if root == nil {
		return "", false
	}

	for _, id := range e.hints.Candidates(appID) {
		if text, ok := e.probe(root, id); ok {
			return text, true
		}
	}

	return e.search(root)
}

// probe looks up nodes by view ID and returns the first one's text.
// All returned handles are released before returning.
func (e *Extractor) probe(root domain.UINode, viewID string) (text string, found bool) {
	var nodes []domain.UINode
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("view id probe panicked", zap.String("view_id", viewID), zap.Any("panic", r))
			text, found = "", false
		}
		for _, n := range nodes {
			releaseQuietly(n)
		}
	}()

	var err error
	nodes, err = root.FindByViewID(viewID)
	if err != nil || len(nodes) == 0 || nodes[0] == nil {
		return "", false
	}

	t, err := nodes[0].Text()
	if err != nil || len(t) < minTargetedLen {
		return "", false
	}
	return t, true
}

// frame is a node on the explicit traversal stack.
type frame struct {
	node  domain.UINode
	depth int
	owned bool // acquired by the search and must be released by it
}

// search is a preorder, left-to-right depth-first walk using an explicit
// stack. Nodes deeper than maxDepth are never acquired, so the walk ends
// even if the tree contains cycles.
func (e *Extractor) search(root domain.UINode) (string, bool) {
	stack := []frame{{node: root, depth: 0}}
	defer func() {
		for _, f := range stack {
			if f.owned {
				releaseQuietly(f.node)
			}
		}
	}()

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hit, ok := inspect(f.node)
		var children []frame
		if !ok && f.depth < e.maxDepth {
			children = e.children(f.node, f.depth+1)
		}
		if f.owned {
			releaseQuietly(f.node)
		}
		if ok {
			for _, c := range children {
				releaseQuietly(c.node)
			}
			return hit, true
		}

		// Push in reverse so the first child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return "", false
}

// inspect tests a node's text and label against the address heuristic.
func inspect(n domain.UINode) (string, bool) {
	if t := safeString(n.Text); len(t) >= minFallbackLen && LooksLikeAddress(t) {
		return t, true
	}
	if l := safeString(n.Label); len(l) >= minFallbackLen && LooksLikeAddress(l) {
		return l, true
	}
	return "", false
}

// children acquires the direct children of n. A failing child slot is skipped.
func (e *Extractor) children(n domain.UINode, depth int) (out []frame) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("child enumeration panicked", zap.Any("panic", r))
		}
	}()

	count, err := n.ChildCount()
	if err != nil {
		return nil
	}
	for i := 0; i < count; i++ {
		c, err := safeChild(n, i)
		if err != nil || c == nil {
			continue
		}
		out = append(out, frame{node: c, depth: depth, owned: true})
	}
	return out
}

func safeChild(n domain.UINode, i int) (c domain.UINode, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, domain.ErrNodeStale
		}
	}()
	return n.Child(i)
}

func safeString(get func() (string, error)) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()
	v, err := get()
	if err != nil {
		return ""
	}
	return v
}

func releaseQuietly(n domain.UINode) {
	if n == nil {
		return
	}
	defer func() { _ = recover() }()
	n.Release()
}

// Ensure Extractor implements domain.AddressExtractor.
var _ domain.AddressExtractor = (*Extractor)(nil)
