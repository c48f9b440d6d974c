package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malclocke/xeroizer/internal/config"
	"github.com/malclocke/xeroizer/internal/log"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/validation"
	"github.com/malclocke/xeroizer/pkg/utils"
)

const itemSchema = `models:
  - name: Item
    fields:
      - key: item_id
        type: guid
        api_name: ItemID
      - key: code
        type: string
      - key: is_sold
        type: boolean
`

const contactsDoc = `<Response>
  <Contacts>
    <Contact>
      <Name>Acme</Name>
      <IsSupplier>true</IsSupplier>
      <Website>acme.example</Website>
      <Phones>
        <Phone><PhoneType>MOBILE</PhoneType><PhoneNumber>555</PhoneNumber></Phone>
      </Phones>
    </Contact>
  </Contacts>
</Response>`

func newTestEnvironment(t *testing.T) *environment {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.LogDir = filepath.Join(root, "logs")
	cfg.SchemasDir = filepath.Join(root, "schemas")
	cfg.OutputNameFormat = "{original}.xml"
	declaration := false
	cfg.XMLDeclaration = &declaration

	require.NoError(t, os.MkdirAll(cfg.SchemasDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SchemasDir, "item.yaml"), []byte(itemSchema), 0644))
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))

	reg, err := buildRegistry(cfg.SchemasDir, log.Discard)
	require.NoError(t, err)

	return &environment{config: cfg, logger: log.Discard, registry: reg}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildRegistry(t *testing.T) {
	env := newTestEnvironment(t)
	assert.True(t, env.registry.Has("Item"))
	assert.True(t, env.registry.Has("Invoice"))

	f, ok := env.registry.Field("Item", "ItemID")
	require.True(t, ok)
	assert.Equal(t, schema.GUID, f.Type)

	writeFile(t, env.config.SchemasDir, "dup.yaml", "models:\n  - name: Contact\n    fields: []\n")
	_, err := buildRegistry(env.config.SchemasDir, log.Discard)
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	env := newTestEnvironment(t)
	path := writeFile(t, t.TempDir(), "contacts.xml", contactsDoc)

	var out bytes.Buffer
	require.NoError(t, runConvert(env, path, "", "xml", &out))
	assert.Equal(t, `<Contacts>
  <Contact>
    <Name>Acme</Name>
    <IsSupplier>true</IsSupplier>
    <Phones>
      <Phone>
        <PhoneType>MOBILE</PhoneType>
        <PhoneNumber>555</PhoneNumber>
      </Phone>
    </Phones>
  </Contact>
</Contacts>
`, out.String())

	out.Reset()
	require.NoError(t, runConvert(env, path, "", "yaml", &out))
	assert.Equal(t, `Contacts:
  - is_supplier: "true"
    name: Acme
    phones:
      - number: "555"
        type: MOBILE
`, out.String())

	item := writeFile(t, t.TempDir(), "item.xml", "<Item><Code>W1</Code><IsSold>yes</IsSold></Item>")
	out.Reset()
	require.NoError(t, runConvert(env, item, "", "xml", &out))
	assert.Equal(t, "<Items>\n  <Item>\n    <Code>W1</Code>\n    <IsSold>false</IsSold>\n  </Item>\n</Items>\n", out.String())

	assert.Error(t, runConvert(env, path, "", "json", &out))
	assert.Error(t, runConvert(env, path, "Bill", "xml", &out))
}

func TestValidate(t *testing.T) {
	env := newTestEnvironment(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "contacts.xml", contactsDoc)
	bad := writeFile(t, dir, "invoice.xml", "<Invoice><Date>soon</Date></Invoice>")

	var out bytes.Buffer
	require.NoError(t, runValidate(env, nil, "", validation.DefaultValidationOptions(), "", &out))
	assert.Contains(t, out.String(), "No validation errors.")

	out.Reset()
	require.NoError(t, runValidate(env, []string{good}, "", validation.DefaultValidationOptions(), "", &out))
	assert.Contains(t, out.String(), "Contact/Website")

	strict := validation.DefaultValidationOptions()
	strict.TreatWarningsAsErrors = true
	out.Reset()
	assert.Error(t, runValidate(env, []string{good}, "", strict, "", &out))

	logPath := filepath.Join(dir, "findings.log")
	out.Reset()
	assert.Error(t, runValidate(env, []string{bad}, "", validation.DefaultValidationOptions(), logPath, &out))
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Invoice/Date")
}

func TestSchemaOutput(t *testing.T) {
	env := newTestEnvironment(t)

	schemas, err := selectSchemas(env.registry, []string{"Item"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printSchemas(schemas, &out))
	assert.Contains(t, out.String(), "Item (Items)")
	assert.Contains(t, out.String(), "item_id")

	out.Reset()
	require.NoError(t, exportYAML(schemas, "-", &out))
	back, err := schema.ParseYAML(out.Bytes())
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, 3, back[0].Len())

	path := filepath.Join(t.TempDir(), "schemas.xlsx")
	require.NoError(t, exportXLSX(schemas, path))
	loaded, err := schema.LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Item", loaded[0].Name())

	_, err = selectSchemas(env.registry, []string{"Bill"})
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	env := newTestEnvironment(t)
	writeFile(t, env.config.InputDir, "contacts.xml", contactsDoc)
	writeFile(t, env.config.InputDir, "broken.xml", "<Contacts>")
	writeFile(t, env.config.InputDir, "notes.txt", "ignored")

	var out bytes.Buffer
	require.NoError(t, runProcess(context.Background(), env, &out))
	text := out.String()
	assert.Contains(t, text, "Found 2 file(s) to process")
	assert.Contains(t, text, "Successful:      1")
	assert.Contains(t, text, "Errors:          1")

	assert.True(t, utils.FileExists(filepath.Join(env.config.OutputDir, "contacts.xml")))
	assert.True(t, utils.FileExists(filepath.Join(env.config.InputArchiveDir, "contacts.xml")))
	assert.True(t, utils.FileExists(filepath.Join(env.config.InputDir, "broken.xml")))

	logs, err := os.ReadDir(env.config.LogDir)
	require.NoError(t, err)
	var names []string
	for _, entry := range logs {
		names = append(names, entry.Name())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "error_log_")
	assert.Contains(t, joined, "processing_summary_")

	stop := false
	env.config.ContinueOnError = &stop
	out.Reset()
	assert.Error(t, runProcess(context.Background(), env, &out))
}
