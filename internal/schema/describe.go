package schema

import "github.com/leapstack-labs/flatconv/pkg/core"

// FieldLayout describes where a field sits in a fixed-width line.
type FieldLayout struct {
	Name       string `json:"name"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	Lookup     bool   `json:"lookup"`
	LookupSize int    `json:"lookup_size,omitempty"`
	Valid      bool   `json:"valid"`
}

// Describe computes field offsets the way the fixed-width extractor walks
// them: invalid fields occupy no characters.
func Describe(s *core.Schema) []FieldLayout {
	out := make([]FieldLayout, 0, len(s.Fields))
	offset := 0
	for _, f := range s.Fields {
		fl := FieldLayout{
			Name:       f.Name,
			Offset:     offset,
			Length:     f.Length,
			Lookup:     f.RequiresLookup,
			LookupSize: len(f.Lookup),
			Valid:      f.Name != "" && f.Length > 0,
		}
		if fl.Valid {
			offset += f.Length
		}
		out = append(out, fl)
	}
	return out
}
