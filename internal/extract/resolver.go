package extract

import (
	"fmt"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Resolve translates raw through the field's lookup table.
//
// Fields without a lookup return raw unchanged. A key present in the table
// returns the mapped value (empty for a null mapping). A missing key returns
// raw unchanged and ok=false so the caller can report the miss.
func Resolve(f *core.Field, raw string) (value string, ok bool) {
	if !f.RequiresLookup || f.Lookup == nil {
		return raw, true
	}
	mapped, found := f.Lookup[raw]
	if !found {
		return raw, false
	}
	if mapped == nil {
		return "", true
	}
	return *mapped, true
}

// resolveField resolves raw and reports a lookup miss for line.
func resolveField(f *core.Field, raw string, line int, warn WarnFunc) string {
	v, ok := Resolve(f, raw)
	if !ok {
		warn(line, f.Name, core.WarnLookupMiss,
			fmt.Sprintf("lookup key %q not found in table for field %q; using original value", raw, f.Name))
	}
	return v
}
