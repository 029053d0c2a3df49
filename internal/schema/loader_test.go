package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/flatconv/internal/testutil"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func TestLoader_LoadJSONWithLookup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"emp.json":        `{"Fields":[{"Name":"*Codigo","Length":3},{"Name":"Nombre","Length":10}]}`,
		"emp_Codigo.json": `{"001":"Activo","002":"Inactivo","003":null}`,
	})

	s, err := NewLoader(dir, "", testutil.NewTestLogger(t)).Load("/data/input/emp.txt")
	require.NoError(t, err)

	assert.Equal(t, "emp", s.Name)
	assert.Equal(t, core.ReaderAuto, s.Reader)
	assert.Equal(t, filepath.Join(dir, "emp.json"), s.Source)
	require.Len(t, s.Fields, 2)

	code := s.Fields[0]
	assert.Equal(t, "Codigo", code.Name)
	assert.Equal(t, 3, code.Length)
	assert.True(t, code.RequiresLookup)
	require.Len(t, code.Lookup, 3)
	assert.Equal(t, "Activo", *code.Lookup["001"])
	assert.Nil(t, code.Lookup["003"])

	name := s.Fields[1]
	assert.Equal(t, "Nombre", name.Name)
	assert.False(t, name.RequiresLookup)
	assert.Nil(t, name.Lookup)
}

func TestLoader_LoadJSONEscapesAndDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"emp.json":        "{\n\t\"FIELDS\": [\n\t\t{\"name\": \"A\\/B\", \"Length\": 3},\n\t\t{\"NAME\": \"*Status\", \"length\": 3}\n\t]\n}",
		"emp_Status.json": `{"N\/A": "Not applicable", "001": "Old", "001": "Active"}`,
	})

	s, err := NewLoader(dir, "", nil).Load("emp.txt")
	require.NoError(t, err)

	assert.Equal(t, []string{"A/B", "Status"}, s.FieldNames())
	assert.Equal(t, 3, s.Fields[0].Length)

	lookup := s.Fields[1].Lookup
	require.Len(t, lookup, 2)
	assert.Equal(t, "Not applicable", *lookup["N/A"])
	assert.Equal(t, "Active", *lookup["001"], "the last duplicate key wins")
}

func TestLoader_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"people.yaml": `
reader: delimited
encoding: latin1
fields:
  - name: Id
  - name: "#Status"
`,
		"people_Status.yml": "A: Active\nI: Inactive\n",
	})

	s, err := NewLoader(dir, "#", nil).Load("people.csv")
	require.NoError(t, err)

	assert.Equal(t, core.ReaderDelimited, s.Reader)
	assert.Equal(t, "latin1", s.Encoding)
	assert.Equal(t, []string{"Id", "Status"}, s.FieldNames())
	assert.Equal(t, "Inactive", *s.Fields[1].Lookup["I"])
}

func TestLoader_JSONPreferredOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"emp.json": `{"fields":[{"name":"FromJSON","length":1}]}`,
		"emp.yaml": "fields:\n  - name: FromYAML\n    length: 1\n",
	})

	s, err := NewLoader(dir, "", nil).Load("emp.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"FromJSON"}, s.FieldNames())
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		errSubstr string
		check     func(t *testing.T, err error)
	}{
		{
			name:  "missing schema",
			files: map[string]string{},
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:      "empty fields",
			files:     map[string]string{"emp.json": `{"Fields":[]}`},
			errSubstr: "does not contain fields",
		},
		{
			name:      "empty document",
			files:     map[string]string{"emp.json": ``},
			errSubstr: "does not contain fields",
		},
		{
			name:      "json array instead of object",
			files:     map[string]string{"emp.json": `[{"Name":"A","Length":1}]`},
			errSubstr: "must be an object",
		},
		{
			name:      "null json document",
			files:     map[string]string{"emp.json": `null`},
			errSubstr: "does not contain fields",
		},
		{
			name:      "non-string lookup value",
			files:     map[string]string{"emp.json": `{"Fields":[{"Name":"*Codigo","Length":3}]}`, "emp_Codigo.json": `{"001": 5}`},
			errSubstr: "invalid lookup table",
		},
		{
			name:      "invalid json",
			files:     map[string]string{"emp.json": `{"Fields": [`},
			errSubstr: "invalid document",
		},
		{
			name:  "unknown top-level key",
			files: map[string]string{"emp.json": `{"Fields":[{"Name":"A","Length":1}],"Delimiter":";"}`},
			check: func(t *testing.T, err error) {
				var ufe *UnknownFieldError
				require.ErrorAs(t, err, &ufe)
				assert.Equal(t, "delimiter", ufe.Field)
			},
		},
		{
			name:  "unknown field key",
			files: map[string]string{"emp.json": `{"Fields":[{"Name":"A","Length":1,"Type":"int"}]}`},
			check: func(t *testing.T, err error) {
				var ufe *UnknownFieldError
				require.ErrorAs(t, err, &ufe)
				assert.Equal(t, "type", ufe.Field)
			},
		},
		{
			name:      "bad reader kind",
			files:     map[string]string{"emp.json": `{"Fields":[{"Name":"A","Length":1}],"Reader":"xlsx"}`},
			errSubstr: "unknown reader kind",
		},
		{
			name:      "missing lookup file",
			files:     map[string]string{"emp.json": `{"Fields":[{"Name":"*Codigo","Length":3}]}`},
			errSubstr: `lookup for field "*Codigo": lookup file not found`,
		},
		{
			name: "null lookup file",
			files: map[string]string{
				"emp.json":        `{"Fields":[{"Name":"*Codigo","Length":3}]}`,
				"emp_Codigo.json": `null`,
			},
			errSubstr: "lookup table is empty or null",
		},
		{
			name: "lookup file is not a map",
			files: map[string]string{
				"emp.json":        `{"Fields":[{"Name":"*Codigo","Length":3}]}`,
				"emp_Codigo.json": `["a","b"]`,
			},
			errSubstr: "invalid lookup table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			_, err := NewLoader(dir, "", nil).Load("emp.txt")
			require.Error(t, err)
			if tt.errSubstr != "" {
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	s := &core.Schema{Fields: []core.Field{
		{Name: "Code", Length: 3, RequiresLookup: true, Lookup: core.LookupTable{"1": nil}},
		{Name: "Broken", Length: 0},
		{Name: "Name", Length: 10},
	}}

	got := Describe(s)
	require.Len(t, got, 3)
	assert.Equal(t, FieldLayout{Name: "Code", Offset: 0, Length: 3, Lookup: true, LookupSize: 1, Valid: true}, got[0])
	assert.False(t, got[1].Valid)
	assert.Equal(t, 3, got[2].Offset)
}

func TestAffects(t *testing.T) {
	assert.True(t, Affects("cfg/emp.json", "input/emp.txt"))
	assert.True(t, Affects("cfg/emp_Codigo.yaml", "input/emp.txt"))
	assert.False(t, Affects("cfg/employee.json", "input/emp.txt"))
	assert.False(t, Affects("cfg/emp.txt", "input/emp.txt"))
	assert.False(t, Affects("cfg/other_emp.json", "input/emp.txt"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "emp", BaseName("/a/b/emp.txt"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
	assert.Equal(t, "noext", BaseName("noext"))
}
