// =============================================================================
// xeroizer - Parsed XML Elements
// =============================================================================
//
// Element is the parsed form of an XML document consumed by the record
// deserializer: a tag name, ordered child elements and the text content.
// Attributes, comments and processing instructions are not kept; the API
// carries all record data in elements.
//
// =============================================================================

package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is one node of a parsed XML document.
type Element struct {
	// Name is the local tag name.
	Name string

	// Text is the character data directly inside the element, excluding
	// the text of child elements.
	Text string

	// Children are the child elements in document order.
	Children []*Element
}

// ErrEmptyDocument is returned when a document contains no root element.
var ErrEmptyDocument = errors.New("xml document has no root element")

// Parse reads a document and returns its root element.
//
// PARAMETERS:
//   - r: The XML document.
//
// RETURNS:
//   - The root element.
//   - An error if the document is not well formed or empty.
func Parse(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)

	var root *Element
	var stack []*Element
	var text []*strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			el := &Element{Name: tok.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			} else {
				return nil, fmt.Errorf("failed to parse XML: multiple root elements")
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(tok)
			}

		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = text[len(text)-1].String()
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}

// ParseBytes parses a document held in memory.
func ParseBytes(data []byte) (*Element, error) {
	return Parse(bytes.NewReader(data))
}

// ParseString parses a document held in a string.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// HasChildren reports whether the element has child elements.
func (e *Element) HasChildren() bool {
	return len(e.Children) > 0
}

// Child returns the first child element with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first child with the given name.
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Find follows a path of child names from e, e.g. Find("Contacts", "Contact").
func (e *Element) Find(path ...string) *Element {
	current := e
	for _, name := range path {
		if current = current.Child(name); current == nil {
			return nil
		}
	}
	return current
}
