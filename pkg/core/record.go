package core

import (
	"bytes"
	"encoding/json"
)

// Entry is one name/value pair of a Record.
type Entry struct {
	Name  string
	Value string
}

// Record is an insertion-ordered mapping from field name to value.
// Keys are unique: setting an existing key replaces its value in place.
type Record struct {
	entries []Entry
	index   map[string]int
}

// NewRecord creates an empty record with room for n fields.
func NewRecord(n int) *Record {
	return &Record{
		entries: make([]Entry, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set stores value under name.
func (r *Record) Set(name, value string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.entries[i].Value = value
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.entries[i].Value, true
}

// Has reports whether name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the record's fields in insertion order.
func (r *Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns the field names in insertion order.
func (r *Record) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Map returns the record as an unordered map.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		m[e.Name] = e.Value
	}
	return m
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordSet is the ordered collection of records extracted from one file.
type RecordSet []*Record
