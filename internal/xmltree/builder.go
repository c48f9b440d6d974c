// =============================================================================
// xeroizer - XML Builder
// =============================================================================
//
// Builder is the streaming XML emitter used by the record serializer. It
// writes nested tags with indentation as they are opened and closed:
//
//   b := xmltree.NewBuilder(xmltree.DefaultOptions())
//   b.Open("Contact")
//   b.Tag("Name", "Acme")
//   b.Close()
//
//   <Contact>
//     <Name>Acme</Name>
//   </Contact>
//
// Text values are escaped. Empty values are written as self-closing tags.
//
// =============================================================================

package xmltree

import (
	"bytes"
	"fmt"
)

// Options contains options for XML generation.
type Options struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes an XML declaration before the first tag.
	// Default: false (API request bodies are sent without one)
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Indent:     "  ",
		XMLVersion: "1.0",
		Encoding:   "UTF-8",
	}
}

// Builder writes an XML document tag by tag.
type Builder struct {
	buffer  bytes.Buffer
	options Options
	open    []string
}

// NewBuilder creates a builder with the given options.
func NewBuilder(options Options) *Builder {
	b := &Builder{options: options}
	if options.IncludeXMLDeclaration {
		version, encoding := options.XMLVersion, options.Encoding
		if version == "" {
			version = "1.0"
		}
		if encoding == "" {
			encoding = "UTF-8"
		}
		fmt.Fprintf(&b.buffer, "<?xml version=\"%s\" encoding=\"%s\"?>\n", version, encoding)
	}
	return b
}

// Tag writes a complete element holding a text value.
func (b *Builder) Tag(name, value string) {
	b.writeIndent()
	b.buffer.WriteString("<")
	b.buffer.WriteString(name)

	if value == "" {
		b.buffer.WriteString("/>\n")
		return
	}

	b.buffer.WriteString(">")
	b.buffer.WriteString(escapeXML(value))
	b.buffer.WriteString("</")
	b.buffer.WriteString(name)
	b.buffer.WriteString(">\n")
}

// Open writes the start tag of an element whose children follow.
func (b *Builder) Open(name string) {
	b.writeIndent()
	b.buffer.WriteString("<")
	b.buffer.WriteString(name)
	b.buffer.WriteString(">\n")
	b.open = append(b.open, name)
}

// Close writes the end tag of the innermost open element.
func (b *Builder) Close() error {
	if len(b.open) == 0 {
		return fmt.Errorf("xml builder: close without open element")
	}
	name := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]

	b.writeIndent()
	b.buffer.WriteString("</")
	b.buffer.WriteString(name)
	b.buffer.WriteString(">\n")
	return nil
}

// Block opens an element, runs fn to write its children and closes it. The
// element is closed even when fn fails.
func (b *Builder) Block(name string, fn func() error) error {
	b.Open(name)
	err := fn()
	if closeErr := b.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Depth returns the number of currently open elements.
func (b *Builder) Depth() int {
	return len(b.open)
}

// Bytes returns the document written so far.
func (b *Builder) Bytes() []byte {
	return b.buffer.Bytes()
}

// String returns the document written so far.
func (b *Builder) String() string {
	return b.buffer.String()
}

func (b *Builder) writeIndent() {
	for i := 0; i < len(b.open); i++ {
		b.buffer.WriteString(b.options.Indent)
	}
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		case '\r':
			buffer.WriteString("&#xD;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
