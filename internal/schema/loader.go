// Package schema loads per-input-file field schemas and their lookup tables.
//
// For an input file "emp.txt" the loader reads <dir>/emp.json (or .yaml,
// .yml). Field names starting with the lookup marker ("*" by default) are
// lookup fields: the marker is stripped and the translation table is read
// from <dir>/emp_<Name>.json (or .yaml, .yml). JSON documents are decoded
// with encoding/json and YAML documents with yaml.v3; both match keys
// case-insensitively.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// DefaultMarker prefixes field names that require a lookup table.
const DefaultMarker = "*"

// Extensions lists schema document extensions in lookup priority.
var Extensions = []string{".json", ".yaml", ".yml"}

// document is the on-disk schema shape. Keys are matched case-insensitively.
type document struct {
	Fields   []fieldDocument `yaml:"fields" json:"fields"`
	Reader   string          `yaml:"reader" json:"reader"`
	Encoding string          `yaml:"encoding" json:"encoding"`
}

type fieldDocument struct {
	Name   string `yaml:"name" json:"name"`
	Length int    `yaml:"length" json:"length"`
}

var (
	knownDocumentKeys = map[string]bool{"fields": true, "reader": true, "encoding": true}
	knownFieldKeys    = map[string]bool{"name": true, "length": true}
)

// Loader resolves schemas from a directory.
type Loader struct {
	dir    string
	marker string
	logger *slog.Logger
}

// NewLoader creates a loader for dir. An empty marker uses DefaultMarker and
// a nil logger discards output.
func NewLoader(dir, marker string, logger *slog.Logger) *Loader {
	if marker == "" {
		marker = DefaultMarker
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, marker: marker, logger: logger}
}

// Dir returns the schema directory.
func (l *Loader) Dir() string {
	return l.dir
}

// BaseName returns the input file name without directory and extension.
func BaseName(inputPath string) string {
	name := filepath.Base(inputPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Find returns the schema document path for an input file.
func (l *Loader) Find(inputPath string) (string, error) {
	base := BaseName(inputPath)
	if path := findDocument(l.dir, base); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("%w for %s (looked for %s.{json,yaml,yml} in %s)",
		ErrSchemaNotFound, filepath.Base(inputPath), base, l.dir)
}

// Load reads the schema for inputPath and attaches every lookup table.
func (l *Loader) Load(inputPath string) (*core.Schema, error) {
	path, err := l.Find(inputPath)
	if err != nil {
		return nil, err
	}
	base := BaseName(inputPath)

	l.logger.Debug("loading schema", "input", inputPath, "schema", path)

	doc, err := parseDocument(path)
	if err != nil {
		return nil, err
	}
	if len(doc.Fields) == 0 {
		return nil, &ParseError{Path: path, Message: "schema is empty or does not contain fields"}
	}

	reader, err := core.ParseReaderKind(doc.Reader)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}

	s := &core.Schema{
		Name:     base,
		Fields:   make([]core.Field, 0, len(doc.Fields)),
		Reader:   reader,
		Encoding: strings.TrimSpace(doc.Encoding),
		Source:   path,
	}

	for _, fd := range doc.Fields {
		f := core.Field{Name: strings.TrimSpace(fd.Name), Length: fd.Length}

		if strings.HasPrefix(f.Name, l.marker) {
			original := f.Name
			f.Name = strings.TrimPrefix(f.Name, l.marker)
			f.RequiresLookup = true

			table, err := l.loadLookup(base, f.Name)
			if err != nil {
				return nil, fmt.Errorf("lookup for field %q: %w", original, err)
			}
			f.Lookup = table
			l.logger.Debug("attached lookup table", "field", f.Name, "entries", len(table))
		}

		s.Fields = append(s.Fields, f)
	}

	return s, nil
}

// loadLookup reads <dir>/<base>_<field>.{json,yaml,yml}.
func (l *Loader) loadLookup(base, field string) (core.LookupTable, error) {
	stem := base + "_" + field
	path := findDocument(l.dir, stem)
	if path == "" {
		return nil, fmt.Errorf("lookup file not found: expected %s",
			filepath.Join(l.dir, stem+Extensions[0]))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lookup file: %w", err)
	}

	var table core.LookupTable
	if isJSON(path) {
		err = json.Unmarshal(data, &table)
	} else {
		err = yaml.Unmarshal(data, &table)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid lookup table: %v", err)}
	}
	if table == nil {
		return nil, &ParseError{Path: path, Message: "lookup table is empty or null"}
	}
	return table, nil
}

// parseDocument decodes a schema document with case-insensitive keys and
// rejects unknown keys.
func parseDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if isJSON(path) {
		return parseJSONDocument(path, data)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid document: %v", err)}
	}
	if len(root.Content) == 0 {
		return nil, &ParseError{Path: path, Message: "schema is empty or does not contain fields"}
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Message: "schema must be an object with a fields list"}
	}
	if err := checkKeys(path, top, knownDocumentKeys); err != nil {
		return nil, err
	}
	if fields := mappingValue(top, "fields"); fields != nil && fields.Kind == yaml.SequenceNode {
		for _, item := range fields.Content {
			if item.Kind == yaml.MappingNode {
				if err := checkKeys(path, item, knownFieldKeys); err != nil {
					return nil, err
				}
			}
		}
	}

	var doc document
	if err := top.Decode(&doc); err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid schema: %v", err)}
	}
	return &doc, nil
}

// parseJSONDocument is parseDocument for .json files.
func parseJSONDocument(path string, data []byte) (*document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Path: path, Message: "schema is empty or does not contain fields"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Path: path, Message: "schema must be an object with a fields list"}
		}
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid document: %v", err)}
	}
	if top == nil {
		return nil, &ParseError{Path: path, Message: "schema is empty or does not contain fields"}
	}

	top, err := checkJSONKeys(path, top, knownDocumentKeys)
	if err != nil {
		return nil, err
	}
	var items []map[string]json.RawMessage
	if raw, ok := top["fields"]; ok && json.Unmarshal(raw, &items) == nil {
		for _, item := range items {
			if _, err := checkJSONKeys(path, item, knownFieldKeys); err != nil {
				return nil, err
			}
		}
	}

	// encoding/json matches struct tags case-insensitively
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid schema: %v", err)}
	}
	return &doc, nil
}

// checkJSONKeys returns m with lower-cased keys and rejects keys outside known.
func checkJSONKeys(path string, m map[string]json.RawMessage, known map[string]bool) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		lower := strings.ToLower(key)
		if !known[lower] {
			return nil, &UnknownFieldError{Path: path, Field: lower}
		}
		out[lower] = m[key]
	}
	return out, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// checkKeys lower-cases the keys of a mapping node in place and rejects
// keys outside known.
func checkKeys(path string, m *yaml.Node, known map[string]bool) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i]
		key.Value = strings.ToLower(key.Value)
		if !known[key.Value] {
			return &UnknownFieldError{Path: path, Field: key.Value}
		}
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// findDocument returns the first existing <dir>/<stem><ext>.
func findDocument(dir, stem string) string {
	for _, ext := range Extensions {
		path := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// IsNotFound reports whether err means the schema document is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

// Affects reports whether a schema or lookup document named docPath belongs
// to the input file inputPath.
func Affects(docPath, inputPath string) bool {
	ext := strings.ToLower(filepath.Ext(docPath))
	known := false
	for _, e := range Extensions {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	stem := BaseName(docPath)
	base := BaseName(inputPath)
	return stem == base || strings.HasPrefix(stem, base+"_")
}
