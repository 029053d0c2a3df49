package format

import (
	"encoding/json"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

func init() {
	Register("json", func() Serializer { return JSON{} })
}

// JSON renders records as an indented array of objects in field order.
type JSON struct{}

// Name implements Serializer.
func (JSON) Name() string { return "json" }

// Extension implements Serializer.
func (JSON) Extension() string { return "json" }

// Serialize implements Serializer.
func (JSON) Serialize(records core.RecordSet) ([]byte, error) {
	if records == nil {
		records = core.RecordSet{}
	}
	return json.MarshalIndent(records, "", "  ")
}
