// Copyright 2025 The Kubernetes Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import (
	"errors"
	"fmt"
)

// Order selects the traversal order for navigable node sequences.
type Order int

const (
	// PreOrder visits a node before any of its children.
	PreOrder Order = iota
	// PostOrder visits all children of a node before the node itself.
	PostOrder
)

// DefaultMaxRecursionDepth bounds the tree depth accepted when building
// a navigable view.
const DefaultMaxRecursionDepth = 500

// ErrRecursionDepth is returned when the underlying tree is deeper than
// the configured recursion limit.
var ErrRecursionDepth = errors.New("recursion depth exceeded")

// NavigableOption configures construction of a navigable view.
type NavigableOption func(*navigableConfig)

type navigableConfig struct {
	maxDepth int
}

// WithMaxRecursionDepth overrides the depth limit enforced while the
// parent-linked view is built.
func WithMaxRecursionDepth(depth int) NavigableOption {
	return func(c *navigableConfig) {
		c.maxDepth = depth
	}
}

// NavigableExpr is a parent-linked, read-only view over one expression
// node. Height and max-id are derived on first use and cached; the
// underlying tree exclusively owns its children and is never mutated.
type NavigableExpr struct {
	expr     *Expr
	parent   *NavigableExpr
	children []*NavigableExpr
	depth    int

	height int64
	maxID  int64
}

// NewNavigableAST wraps a checked AST in a navigable view rooted at its
// top expression. Construction walks the tree once to link parents and
// fails with ErrRecursionDepth when the tree is deeper than the
// configured limit.
func NewNavigableAST(a *AST, opts ...NavigableOption) (*NavigableExpr, error) {
	if a == nil || a.Expr == nil {
		return nil, errors.New("navigable view requires a non-empty ast")
	}
	cfg := navigableConfig{maxDepth: DefaultMaxRecursionDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newNavigableExpr(a.Expr, nil, 0, cfg.maxDepth)
}

func newNavigableExpr(e *Expr, parent *NavigableExpr, depth, maxDepth int) (*NavigableExpr, error) {
	if depth >= maxDepth {
		return nil, fmt.Errorf("%w: node %d at depth %d", ErrRecursionDepth, e.ID, depth)
	}
	nav := &NavigableExpr{
		expr:   e,
		parent: parent,
		depth:  depth,
		height: -1,
		maxID:  -1,
	}
	children := e.Children()
	nav.children = make([]*NavigableExpr, 0, len(children))
	for _, child := range children {
		childNav, err := newNavigableExpr(child, nav, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		nav.children = append(nav.children, childNav)
	}
	return nav, nil
}

// Expr returns the underlying expression node.
func (n *NavigableExpr) Expr() *Expr {
	return n.expr
}

// ID returns the expression id of the underlying node.
func (n *NavigableExpr) ID() int64 {
	return n.expr.ID
}

// Kind returns the syntactic kind of the underlying node.
func (n *NavigableExpr) Kind() Kind {
	return n.expr.Kind
}

// Parent returns the parent view and true, or false at the root.
func (n *NavigableExpr) Parent() (*NavigableExpr, bool) {
	return n.parent, n.parent != nil
}

// Depth is the distance from the root of the navigable view; the root
// has depth 0.
func (n *NavigableExpr) Depth() int {
	return n.depth
}

// Height is the length of the longest path below the node; leaves have
// height 0.
func (n *NavigableExpr) Height() int {
	if n.height < 0 {
		h := int64(0)
		for _, child := range n.children {
			if ch := int64(child.Height()); ch+1 > h {
				h = ch + 1
			}
		}
		n.height = h
	}
	return int(n.height)
}

// MaxID is the largest expression id in the subtree rooted at the node.
func (n *NavigableExpr) MaxID() int64 {
	if n.maxID < 0 {
		m := n.expr.ID
		for _, child := range n.children {
			if cm := child.MaxID(); cm > m {
				m = cm
			}
		}
		n.maxID = m
	}
	return n.maxID
}

// Children returns the direct child views. Sibling order follows the
// construction order of the underlying payload and is the same for
// both traversal orders.
func (n *NavigableExpr) Children(_ ...Order) []*NavigableExpr {
	return append([]*NavigableExpr(nil), n.children...)
}

// AllNodes returns every node of the subtree including the receiver.
// With no order given the sequence is pre-order.
func (n *NavigableExpr) AllNodes(order ...Order) []*NavigableExpr {
	o := PreOrder
	if len(order) > 0 {
		o = order[0]
	}
	var out []*NavigableExpr
	n.visit(o, func(node *NavigableExpr) {
		out = append(out, node)
	})
	return out
}

// Descendants returns every node strictly below the receiver, in the
// given order.
func (n *NavigableExpr) Descendants(order ...Order) []*NavigableExpr {
	nodes := n.AllNodes(order...)
	out := nodes[:0]
	for _, node := range nodes {
		if node != n {
			out = append(out, node)
		}
	}
	return out
}

func (n *NavigableExpr) visit(order Order, fn func(*NavigableExpr)) {
	if order == PreOrder {
		fn(n)
	}
	for _, child := range n.children {
		child.visit(order, fn)
	}
	if order == PostOrder {
		fn(n)
	}
}

// Collect returns the nodes of the subtree whose depth relative to the
// root does not exceed maxDepth, in the given order. A negative
// maxDepth yields no nodes; zero yields only the root.
func Collect(root *NavigableExpr, maxDepth int, order Order) []*NavigableExpr {
	if root == nil || maxDepth < 0 {
		return nil
	}
	base := root.depth
	var out []*NavigableExpr
	root.visit(order, func(node *NavigableExpr) {
		if node.depth-base <= maxDepth {
			out = append(out, node)
		}
	})
	return out
}
