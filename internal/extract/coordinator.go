package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

const byteOrderMark = "\ufeff"

// Coordinator reads every line of one input stream through an Extractor.
// It holds no state between ReadAll calls.
type Coordinator struct {
	extractor Extractor
	sink      core.Sink
	file      string
}

// NewCoordinator creates a coordinator for the named file. Warnings are
// stamped with file and sent to sink (nil discards them).
func NewCoordinator(extractor Extractor, sink core.Sink, file string) *Coordinator {
	if sink == nil {
		sink = core.SinkFunc(func(core.Warning) {})
	}
	return &Coordinator{extractor: extractor, sink: sink, file: file}
}

// ReadAll extracts the records of r in line order.
//
// Row-level anomalies become warnings and never stop the file. Errors are
// returned only for an unusable schema or a failing stream.
func (c *Coordinator) ReadAll(r io.Reader, schema *core.Schema) (core.RecordSet, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}

	warn := c.warnFunc()
	if sc, ok := c.extractor.(SchemaChecker); ok {
		sc.CheckSchema(schema, warn)
	}
	br := bufio.NewReader(r)
	records := core.RecordSet{}

	first := true
	if hr, ok := c.extractor.(HeaderReader); ok {
		header, err := readLine(br)
		if errors.Is(err, io.EOF) && header == "" {
			warn(0, "", core.WarnEmptyFile, "file is empty or has no header")
			return records, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		hr.CheckHeader(strings.TrimPrefix(header, byteOrderMark), schema, warn)
		first = false
		if errors.Is(err, io.EOF) {
			return records, nil
		}
	}

	lineNo := 0
	for {
		line, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading line %d: %w", lineNo+1, err)
		}
		if line != "" || err == nil {
			lineNo++
			if first {
				line = strings.TrimPrefix(line, byteOrderMark)
				first = false
			}
			if strings.TrimSpace(line) != "" {
				if rec := c.extractor.Extract(line, lineNo, schema, warn); rec != nil {
					records = append(records, rec)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return records, nil
		}
	}
}

func (c *Coordinator) warnFunc() WarnFunc {
	return func(line int, field string, code core.WarningCode, msg string) {
		c.sink.Warn(core.Warning{
			File:    c.file,
			Line:    line,
			Field:   field,
			Code:    code,
			Message: msg,
		})
	}
}

// readLine returns the next line without its terminator. At end of input
// it returns the final unterminated line (possibly empty) with io.EOF.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
