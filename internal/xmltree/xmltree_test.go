package xmltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<Invoice>
  <!-- comment -->
  <InvoiceNumber>INV-001</InvoiceNumber>
  <Reference><![CDATA[Ref & <co>]]></Reference>
  <LineItems>
    <LineItem><Description>One</Description></LineItem>
    <LineItem><Description>Two</Description></LineItem>
  </LineItems>
  <Empty/>
</Invoice>`

	root, err := ParseString(doc)
	require.NoError(t, err)

	assert.Equal(t, "Invoice", root.Name)
	require.Len(t, root.Children, 4)
	assert.Equal(t, "INV-001", root.ChildText("InvoiceNumber"))
	assert.Equal(t, "Ref & <co>", root.ChildText("Reference"))

	items := root.Child("LineItems")
	require.NotNil(t, items)
	assert.True(t, items.HasChildren())
	require.Len(t, items.Children, 2)
	assert.Equal(t, "Two", items.Children[1].ChildText("Description"))

	empty := root.Child("Empty")
	require.NotNil(t, empty)
	assert.False(t, empty.HasChildren())
	assert.Equal(t, "", empty.Text)

	assert.Equal(t, "One", root.Find("LineItems", "LineItem", "Description").Text)
	assert.Nil(t, root.Find("LineItems", "Missing"))
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString("")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ParseString("<a><b></a>")
	assert.Error(t, err)

	_, err = ParseString("<a/><b/>")
	assert.Error(t, err)
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	err := b.Block("Contact", func() error {
		b.Tag("Name", `Smith & "Sons" <Ltd>`)
		b.Tag("EmailAddress", "")
		return b.Block("Addresses", func() error {
			b.Tag("City", "Wellington")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Depth())

	expected := `<Contact>
  <Name>Smith &amp; &quot;Sons&quot; &lt;Ltd&gt;</Name>
  <EmailAddress/>
  <Addresses>
    <City>Wellington</City>
  </Addresses>
</Contact>
`
	assert.Equal(t, expected, b.String())
}

func TestBuilderDeclarationAndClose(t *testing.T) {
	b := NewBuilder(Options{Indent: "\t", IncludeXMLDeclaration: true})
	b.Open("A")
	b.Tag("B", "1")
	require.NoError(t, b.Close())
	assert.Error(t, b.Close())

	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<A>\n\t<B>1</B>\n</A>\n", b.String())
}

func TestBuilderOutputParsesBack(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	b.Open("Note")
	b.Tag("Body", "a < b && c > 'd'\r\n")
	require.NoError(t, b.Close())

	root, err := ParseBytes(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "a < b && c > 'd'\r\n", root.ChildText("Body"))
}
