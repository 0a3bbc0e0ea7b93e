package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMappingYAML = `
fields:
  - target: NAME
    source: call.agreements.client_name
    transform: trim_name
  - target: PHONE
    source: contact.phone
    transform: phone_work
  - target: SOURCE_ID
    source: static
    value: WEBHOOK
  - target: ADDRESS_CITY
    source: contact.city
`

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(sampleMappingYAML), DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, table, 4)

	assert.Equal(t, "NAME", table[0].Target)
	assert.Equal(t, "call.agreements.client_name", table[0].Source)
	assert.NotNil(t, table[0].Transform)

	assert.Equal(t, "SOURCE_ID", table[2].Target)
	assert.Equal(t, SourceStatic, table[2].Source)
	assert.Equal(t, "WEBHOOK", table[2].Value)

	assert.Equal(t, "ADDRESS_CITY", table[3].Target)
	assert.Nil(t, table[3].Transform)
}

func TestParseTable_LoadedTableMapsDocument(t *testing.T) {
	table, err := ParseTable([]byte(sampleMappingYAML), DefaultRegistry())
	require.NoError(t, err)

	doc := map[string]interface{}{
		"contact": map[string]interface{}{"phone": "8 900 123-45-67", "city": "Tula"},
		"call": map[string]interface{}{
			"agreements": map[string]interface{}{"client_name": " Ann "},
		},
	}

	record, errs := Apply(doc, table)
	assert.Empty(t, errs)
	assert.Equal(t, "Ann", record["NAME"])
	assert.Equal(t, "WEBHOOK", record["SOURCE_ID"])
	assert.Equal(t, "Tula", record["ADDRESS_CITY"])
}

func TestParseTable_UnknownTransform(t *testing.T) {
	data := []byte(`
fields:
  - target: NAME
    source: contact.name
    transform: shout
`)

	_, err := ParseTable(data, DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown transform "shout"`)
}

func TestParseTable_MissingTarget(t *testing.T) {
	data := []byte(`
fields:
  - source: contact.name
`)

	_, err := ParseTable(data, DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target is required")
}

func TestParseTable_StaticWithoutValue(t *testing.T) {
	data := []byte(`
fields:
  - target: SOURCE_ID
    source: static
`)

	_, err := ParseTable(data, DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static source requires a value")
}

func TestParseTable_NoFields(t *testing.T) {
	_, err := ParseTable([]byte("fields: []"), DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields")
}

func TestParseTable_MalformedYAML(t *testing.T) {
	_, err := ParseTable([]byte("fields: [unterminated"), DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse mapping YAML")
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMappingYAML), 0o644))

	table, err := LoadTable(path, DefaultRegistry())
	require.NoError(t, err)
	assert.Len(t, table, 4)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml"), DefaultRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read mapping file")
}
