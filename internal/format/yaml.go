package format

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

func init() {
	Register("yaml", func() Serializer { return YAML{} })
}

// YAML renders records as a sequence of mappings in field order.
// Every value is emitted as a string scalar.
type YAML struct{}

// Name implements Serializer.
func (YAML) Name() string { return "yaml" }

// Extension implements Serializer.
func (YAML) Extension() string { return "yaml" }

// Serialize implements Serializer.
func (YAML) Serialize(records core.RecordSet) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range rec.Entries() {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	if len(seq.Content) == 0 {
		seq.Style = yaml.FlowStyle
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
