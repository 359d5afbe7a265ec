package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// rowReader streams top-level JSON values from either an array-of-objects
// document or NDJSON. Only one row is in memory at a time.
type rowReader struct {
	dec     *json.Decoder
	inArray bool
}

func newRowReader(r io.Reader) (*rowReader, error) {
	br := bufio.NewReaderSize(r, 256*1024)

	// Skip UTF-8 BOM if present
	if bom, err := br.Peek(3); err == nil && len(bom) >= 3 &&
		bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	// Peek the first non-space byte to tell an array from NDJSON.
	var first byte
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return &rowReader{dec: json.NewDecoder(br)}, nil
		}
		if err != nil {
			return nil, err
		}
		if b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r' {
			br.Discard(1)
			continue
		}
		first = b[0]
		break
	}

	rr := &rowReader{dec: json.NewDecoder(br)}
	if first == '[' {
		rr.inArray = true
		if _, err := rr.dec.Token(); err != nil {
			return nil, fmt.Errorf("read opening bracket: %w", err)
		}
	}
	return rr, nil
}

// Next returns the next raw row, or io.EOF when the input is exhausted.
func (r *rowReader) Next() (json.RawMessage, error) {
	if r.inArray && !r.dec.More() {
		return nil, io.EOF
	}
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// flexFloat decodes a JSON number or a numeric string ("24,945.00" style).
// Anything else leaves the value invalid; the row is then skipped rather
// than failing the file.
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value, f.valid = num, true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(str), ",", "")
	if cleaned == "" {
		return nil
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	f.value, f.valid = num, true
	return nil
}
