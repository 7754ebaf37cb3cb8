package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/lltable/grammar"
)

// ErrTreeBuildSkipped means that no tree was built because the parse had errors.
var ErrTreeBuildSkipped = errors.New("tree build skipped because the parse had errors")

// Node is a node of a parse tree. Occurrence distinguishes children having the same symbol; the first one is 0.
type Node struct {
	Symbol     grammar.Symbol
	Occurrence int
	Terminal   bool
	Children   []*Node
}

// Key returns the symbol of a node with its occurrence, such as `A`, `A_1`, and `A_2`.
func (n *Node) Key() string {
	if n.Occurrence == 0 {
		return n.Symbol.String()
	}
	return fmt.Sprintf("%v_%v", n.Symbol, n.Occurrence)
}

// IsLeaf reports whether a node has no children. Terminals and EPSILON are always leaves.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// BuildTree rebuilds the parse tree of a leftmost derivation. It returns ErrTreeBuildSkipped when the parser
// has recorded errors.
func (p *Parser) BuildTree(gram *grammar.Grammar) (*Node, error) {
	if len(p.errs) > 0 {
		return nil, ErrTreeBuildSkipped
	}
	return BuildTree(gram, p.history)
}

// BuildTree rebuilds the parse tree of a leftmost derivation. The history must be the one of a parse without
// errors, otherwise the result is meaningless.
func BuildTree(gram *grammar.Grammar, history []Derivation) (*Node, error) {
	root := &Node{
		Symbol: gram.Start(),
	}
	open := arraystack.New()
	open.Push(root)
	for i, d := range history {
		prod, r, err := gram.Rule(d.Production, d.Rule)
		if err != nil {
			return nil, fmt.Errorf("derivation #%v: %w", i, err)
		}
		v, ok := open.Pop()
		if !ok {
			return nil, fmt.Errorf("derivation #%v: no non-terminal is left to expand by %v", i, prod.Parent)
		}
		parent := v.(*Node)
		if parent.Symbol != prod.Parent {
			return nil, fmt.Errorf("derivation #%v: %v cannot be expanded by a rule of %v", i, parent.Symbol, prod.Parent)
		}

		parent.Children = newChildren(gram, r)
		for j := len(parent.Children) - 1; j >= 0; j-- {
			c := parent.Children[j]
			if !c.Terminal && c.Symbol != grammar.Epsilon {
				open.Push(c)
			}
		}
	}
	if !open.Empty() {
		return nil, fmt.Errorf("the derivation is incomplete; %v non-terminals are left", open.Size())
	}
	return root, nil
}

func newChildren(gram *grammar.Grammar, r grammar.Rule) []*Node {
	if r.IsEpsilon() {
		return []*Node{
			{
				Symbol: grammar.Epsilon,
			},
		}
	}
	count := map[grammar.Symbol]int{}
	children := make([]*Node, len(r))
	for i, sym := range r {
		children[i] = &Node{
			Symbol:     sym,
			Occurrence: count[sym],
			Terminal:   gram.IsTerminal(sym),
		}
		count[sym]++
	}
	return children
}

// PrintTree prints a parse tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	fmt.Fprintf(w, "%v%v\n", ruledLine, node.Symbol)

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// MarshalJSON encodes a tree as nested objects keyed by Key: `{"S": {"(": null, "S": {...}, ")": null}}`.
// Terminals are null and the other leaves are empty objects. Keys keep the order of the children.
func (n *Node) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	err := writeNestedMember(&b, n)
	if err != nil {
		return nil, err
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeNestedMember(b *bytes.Buffer, n *Node) error {
	key, err := json.Marshal(n.Key())
	if err != nil {
		return err
	}
	b.Write(key)
	b.WriteByte(':')
	if n.Terminal {
		b.WriteString("null")
		return nil
	}
	b.WriteByte('{')
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		err := writeNestedMember(b, c)
		if err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// DisplayNode is the display-oriented form of a tree node.
type DisplayNode struct {
	Text     DisplayText    `json:"text"`
	Children []*DisplayNode `json:"children,omitempty"`
}

type DisplayText struct {
	Name string `json:"name"`
}

// ToDisplayTree converts a tree into the display-oriented form `{text: {name}, children: [...]}`.
func ToDisplayTree(n *Node) *DisplayNode {
	d := &DisplayNode{
		Text: DisplayText{
			Name: n.Key(),
		},
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, ToDisplayTree(c))
	}
	return d
}
