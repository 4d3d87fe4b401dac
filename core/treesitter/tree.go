package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Tree struct {
	inner  *sitter.Tree
	source []byte
}

func (t *Tree) RootNode() *Node {
	return &Node{
		inner:  t.inner.RootNode(),
		source: t.source,
	}
}

func (t *Tree) Close() {
	t.inner.Close()
}

func (t *Tree) Source() []byte {
	return t.source
}

// HasError reports whether the parse produced any error nodes.
func (t *Tree) HasError() bool {
	return t.inner.RootNode().HasError()
}

// IdentifierHit is one identifier-node occurrence in a parsed file.
type IdentifierHit struct {
	Text      string
	StartByte uint
	Row       uint32
}

// Identifiers collects every identifier-kind node in document order.
// Any node whose kind contains "identifier" qualifies, which covers
// the per-grammar variants (identifier, simple_identifier,
// type_identifier, property_identifier, shorthand_property_identifier).
func (t *Tree) Identifiers() []IdentifierHit {
	var hits []IdentifierHit
	t.RootNode().Walk(func(n *Node) bool {
		if strings.Contains(n.Type(), "identifier") {
			hits = append(hits, IdentifierHit{
				Text:      n.Content(),
				StartByte: n.StartByte(),
				Row:       n.StartPosition().Row,
			})
		}
		return true
	})
	return hits
}

type Node struct {
	inner  *sitter.Node
	source []byte
}

func (n *Node) Type() string {
	return n.inner.Kind()
}

func (n *Node) StartByte() uint {
	return n.inner.StartByte()
}

func (n *Node) EndByte() uint {
	return n.inner.EndByte()
}

func (n *Node) StartPosition() Point {
	p := n.inner.StartPosition()
	return Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

func (n *Node) EndPosition() Point {
	p := n.inner.EndPosition()
	return Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

func (n *Node) ChildCount() uint {
	return uint(n.inner.ChildCount())
}

func (n *Node) Child(index uint) *Node {
	child := n.inner.Child(index)
	if child == nil {
		return nil
	}
	return &Node{inner: child, source: n.source}
}

func (n *Node) NamedChildCount() uint {
	return uint(n.inner.NamedChildCount())
}

func (n *Node) NamedChild(index uint) *Node {
	child := n.inner.NamedChild(index)
	if child == nil {
		return nil
	}
	return &Node{inner: child, source: n.source}
}

func (n *Node) Parent() *Node {
	parent := n.inner.Parent()
	if parent == nil {
		return nil
	}
	return &Node{inner: parent, source: n.source}
}

func (n *Node) ChildByFieldName(name string) *Node {
	child := n.inner.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return &Node{inner: child, source: n.source}
}

func (n *Node) IsNamed() bool {
	return n.inner.IsNamed()
}

func (n *Node) HasError() bool {
	return n.inner.HasError()
}

// Walk visits n and its descendants pre-order. Returning false from fn
// prunes the subtree below the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if child := n.Child(i); child != nil {
			child.Walk(fn)
		}
	}
}

func (n *Node) Content() string {
	start := n.StartByte()
	end := n.EndByte()
	if end > uint(len(n.source)) {
		end = uint(len(n.source))
	}
	if start >= end {
		return ""
	}
	return string(n.source[start:end])
}

func (n *Node) String() string {
	return n.inner.ToSexp()
}

type Point struct {
	Row    uint32
	Column uint32
}
