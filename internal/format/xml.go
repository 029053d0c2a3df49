package format

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

func init() {
	Register("xml", func() Serializer { return XML{} })
}

// XML renders records as
//
//	<Records>
//	  <Record>
//	    <Name>value</Name>
//	  </Record>
//	</Records>
//
// without an XML declaration. Field names that are not valid XML names are
// escaped with EncodeName.
type XML struct{}

// Name implements Serializer.
func (XML) Name() string { return "xml" }

// Extension implements Serializer.
func (XML) Extension() string { return "xml" }

// Serialize implements Serializer.
func (XML) Serialize(records core.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "Records"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for i, rec := range records {
		if rec == nil {
			continue
		}
		if err := encodeRecord(enc, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeRecord(enc *xml.Encoder, rec *core.Record) error {
	start := xml.StartElement{Name: xml.Name{Local: "Record"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, e := range rec.Entries() {
		name := EncodeName(e.Name)
		if name == "" {
			return fmt.Errorf("field with empty name")
		}
		if err := enc.EncodeElement(e.Value, xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
			return fmt.Errorf("field %q: %w", e.Name, err)
		}
	}
	return enc.EncodeToken(start.End())
}

// EncodeName turns an arbitrary string into a valid XML element name.
// Characters that may not appear at their position are written as _xHHHH_
// (eight hex digits outside the basic multilingual plane), and an
// underscore that would read as the start of such an escape is itself
// escaped as _x005F_. Valid names pass through unchanged.
func EncodeName(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	first := true
	for i, r := range name {
		switch {
		case r == '_' && looksEscaped(name[i:]):
			b.WriteString("_x005F_")
		case first && isNameStart(r), !first && isNameChar(r):
			b.WriteRune(r)
		default:
			writeEscape(&b, r)
		}
		first = false
	}
	return b.String()
}

func writeEscape(b *strings.Builder, r rune) {
	if r > 0xFFFF {
		fmt.Fprintf(b, "_x%08X_", r)
		return
	}
	fmt.Fprintf(b, "_x%04X_", r)
}

// looksEscaped reports whether s starts with _xHHHH_ or _xHHHHHHHH_.
func looksEscaped(s string) bool {
	if len(s) < 7 || s[1] != 'x' {
		return false
	}
	for _, n := range []int{4, 8} {
		if len(s) < n+3 {
			continue
		}
		if isHex(s[2:2+n]) && s[2+n] == '_' {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// isNameStart implements the XML 1.0 (fifth edition) NameStartChar
// production without the colon, which is reserved for namespaces.
func isNameStart(r rune) bool {
	switch {
	case r == '_',
		'A' <= r && r <= 'Z',
		'a' <= r && r <= 'z',
		0xC0 <= r && r <= 0xD6,
		0xD8 <= r && r <= 0xF6,
		0xF8 <= r && r <= 0x2FF,
		0x370 <= r && r <= 0x37D,
		0x37F <= r && r <= 0x1FFF,
		0x200C <= r && r <= 0x200D,
		0x2070 <= r && r <= 0x218F,
		0x2C00 <= r && r <= 0x2FEF,
		0x3001 <= r && r <= 0xD7FF,
		0xF900 <= r && r <= 0xFDCF,
		0xFDF0 <= r && r <= 0xFFFD,
		0x10000 <= r && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameChar(r rune) bool {
	switch {
	case isNameStart(r),
		r == '-', r == '.',
		'0' <= r && r <= '9',
		r == 0xB7,
		0x300 <= r && r <= 0x36F,
		0x203F <= r && r <= 0x2040:
		return true
	}
	return false
}
