package budget

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeSnapshot writes snap as JSONL, one line per collection:
//
//	{"collection":"expenses","items":[...]}
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	for _, c := range Collections {
		var line jsonObjectWriter
		line.Append("collection", c)
		line.Append("items", snap.Value(c))
		b, err := line.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode %q: %w", c, err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
// Collections absent from the stream are left nil.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var j struct {
			Collection string          `json:"collection"`
			Items      json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(line, &j); err != nil {
			return Snapshot{}, fmt.Errorf("format error on line %d: %w", n, err)
		}
		c, err := ParseCollection(j.Collection)
		if err != nil {
			return Snapshot{}, fmt.Errorf("format error on line %d: %w", n, err)
		}
		v, err := DecodeCollection(c, j.Items)
		if err != nil {
			return Snapshot{}, fmt.Errorf("format error on line %d: %w", n, err)
		}
		if err := snap.set(c, v); err != nil {
			return Snapshot{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
