package extract

import (
	"github.com/leapstack-labs/flatconv/internal/diagnostic"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

func strPtr(s string) *string { return &s }

func lookup(pairs ...string) core.LookupTable {
	t := make(core.LookupTable, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		t[pairs[i]] = strPtr(pairs[i+1])
	}
	return t
}

// collect returns a WarnFunc writing into a fresh collector.
func collect() (WarnFunc, *diagnostic.Collector) {
	c := diagnostic.NewCollector()
	return func(line int, field string, code core.WarningCode, msg string) {
		c.Warn(core.Warning{File: "test", Line: line, Field: field, Code: code, Message: msg})
	}, c
}

func recordMap(r *core.Record) map[string]string {
	if r == nil {
		return nil
	}
	return r.Map()
}
