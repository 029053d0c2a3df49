package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsInsertionOrder(t *testing.T) {
	r := NewRecord(3)
	r.Set("Zeta", "1")
	r.Set("Alpha", "2")
	r.Set("Mid", "3")

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, r.Names())
	assert.Equal(t, 3, r.Len())
}

func TestRecord_SetReplacesInPlace(t *testing.T) {
	r := NewRecord(2)
	r.Set("A", "first")
	r.Set("B", "x")
	r.Set("A", "second")

	assert.Equal(t, []Entry{{Name: "A", Value: "second"}, {Name: "B", Value: "x"}}, r.Entries())
}

func TestRecord_Get(t *testing.T) {
	var r Record
	_, ok := r.Get("missing")
	assert.False(t, ok)

	r.Set("City", "")
	v, ok := r.Get("City")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.True(t, r.Has("City"))
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord(3)
	r.Set("Name", `Ann "The" Boss`)
	r.Set("Code", "Active")
	r.Set("Ünï", "ok")

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Name":"Ann \"The\" Boss","Code":"Active","Ünï":"ok"}`, string(data))

	var back map[string]string
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Map(), back)
}

func TestParseReaderKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ReaderKind
		wantErr bool
	}{
		{"", ReaderAuto, false},
		{"auto", ReaderAuto, false},
		{"Fixed", ReaderFixedWidth, false},
		{"fixed-width", ReaderFixedWidth, false},
		{"csv", ReaderDelimited, false},
		{"delimited", ReaderDelimited, false},
		{"xlsx", ReaderAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseReaderKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSchema_Width(t *testing.T) {
	s := Schema{Fields: []Field{{Name: "A", Length: 3}, {Name: "B", Length: -1}, {Name: "C", Length: 5}}}
	assert.Equal(t, 8, s.Width())
	assert.Equal(t, []string{"A", "B", "C"}, s.FieldNames())
}

func TestWarning_String(t *testing.T) {
	w := Warning{File: "emp.txt", Line: 4, Field: "Code", Code: WarnLookupMiss, Message: "not found"}
	assert.Equal(t, "emp.txt:4 [Code] lookup_miss: not found", w.String())

	w = Warning{File: "p.csv", Code: WarnHeaderMismatch, Message: "3 vs 2"}
	assert.Equal(t, "p.csv header_mismatch: 3 vs 2", w.String())
}

func TestBatchResult_Totals(t *testing.T) {
	b := BatchResult{Files: []*FileResult{
		{Status: FileStatusSuccess, Records: 3, Warnings: []Warning{{}, {}}},
		{Status: FileStatusFailed},
		{Status: FileStatusSuccess, Records: 2},
	}}
	assert.Equal(t, 1, b.Failed())
	assert.Equal(t, 5, b.Records())
	assert.Equal(t, 2, b.Warnings())
}
