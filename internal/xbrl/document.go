// Package xbrl implements the digital extraction path: parsing a tagged
// filing into a navigable tree, identifying the governing accounting
// standard, resolving unit and period references, and extracting the tagged
// facts into canonical elements.
//
// Both inline-XBRL (html) and legacy bare-XBRL (xml) filings are served by
// the same lenient html parse, which lowercases tag and attribute names and
// keeps namespace prefixes as part of the name ("ix:nonfraction",
// "xbrli:context"). All lookups in this package assume that normalization.
package xbrl

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the capability interface the extractor depends on. It is the only
// view of the underlying parse tree the rest of the package sees, so a
// second document variant only needs a second implementation.
type Node interface {
	// Name returns the lowercased, prefix-qualified tag name.
	Name() string
	// Attr returns the value of the named attribute.
	Attr(key string) (string, bool)
	// Text returns the concatenated text content of the node and its
	// descendants.
	Text() string
	// Children returns the element children in document order.
	Children() []Node
}

// Document is a parsed tagged filing.
type Document struct {
	doc *goquery.Document
}

// Parse reads a tagged filing into a Document. A parse failure here is a
// document-open failure for the pipeline.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing tagged document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Walk visits every element node in document order. Returning false from
// the visitor stops the walk; Walk reports whether it ran to completion.
func (d *Document) Walk(visit func(Node) bool) bool {
	done := true
	d.doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !visit(&htmlNode{sel: sel}) {
			done = false
			return false
		}
		return true
	})
	return done
}

// First returns the first node in document order whose name matches one of
// the given names. Names must be lowercased.
func (d *Document) First(names ...string) Node {
	var found Node
	d.Walk(func(n Node) bool {
		for _, name := range names {
			if n.Name() == name {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// htmlNode adapts a single-element goquery selection to the Node interface.
type htmlNode struct {
	sel *goquery.Selection
}

func (n *htmlNode) Name() string {
	return strings.ToLower(goquery.NodeName(n.sel))
}

func (n *htmlNode) Attr(key string) (string, bool) {
	return n.sel.Attr(key)
}

func (n *htmlNode) Text() string {
	return n.sel.Text()
}

func (n *htmlNode) Children() []Node {
	var children []Node
	n.sel.Children().Each(func(_ int, sel *goquery.Selection) {
		children = append(children, &htmlNode{sel: sel})
	})
	return children
}
