// Package description implements the HTTP description fetcher and the
// Device/Service builder: retrieving DDF/SCPD documents over HTTP,
// parsing them into a generic tree, and materialising the typed Device and
// Service model the SOAP dispatcher (package soap) and ControlPoint facade
// (package control) operate on.
package description

import (
	"github.com/beevik/etree"
)

// Node is the generic nested map/sequence XML tree:
// element local names index children, repeated siblings collapse to a
// sequence, attributes merge into the element's own map, and text content
// is exposed as Text. It is backed by github.com/beevik/etree rather than a
// hand-rolled token walker, since etree already parses into an addressable
// element tree; Node is a thin canonicalising view over an *etree.Element.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children map[string][]*Node
}

// ParseXML parses raw XML bytes into a Node tree rooted at the document's
// single root element. Any backend that yields the same semantic tree is
// acceptable; this implementation happens to use etree.
func ParseXML(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return &Node{Children: map[string][]*Node{}}, nil
	}
	return nodeFromElement(root), nil
}

func nodeFromElement(el *etree.Element) *Node {
	n := &Node{
		Name:     el.Tag,
		Attrs:    make(map[string]string, len(el.Attr)),
		Children: make(map[string][]*Node),
	}
	for _, a := range el.Attr {
		n.Attrs[a.Key] = a.Value
	}
	n.Text = el.Text()
	for _, child := range el.ChildElements() {
		cn := nodeFromElement(child)
		n.Children[cn.Name] = append(n.Children[cn.Name], cn)
	}
	return n
}

// Child returns the first child element named name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	if kids := n.Children[name]; len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// All returns every child element named name (the "sequence" case of the
// generic tree).
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	return n.Children[name]
}

// Path walks a sequence of element names (e.g. Path("device", "deviceList")),
// returning the first matching node at each level, or nil if any segment
// is absent.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// TextOf is a nil-safe accessor returning the text content of the first
// child named name.
func (n *Node) TextOf(name string) string {
	c := n.Child(name)
	if c == nil {
		return ""
	}
	return c.Text
}
