// Package spinner holds the preloaded name→frame-sequence table used by
// show-status commands.
package spinner

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed spinners.json
var spinnersJSON []byte

// Table maps spinner names to their ordered frame sequences.
type Table struct {
	frames map[string][]string
}

// LoadTable parses the embedded spinner definitions.
func LoadTable() (*Table, error) {
	frames := make(map[string][]string)
	if err := json.Unmarshal(spinnersJSON, &frames); err != nil {
		return nil, fmt.Errorf("failed to parse spinner table: %w", err)
	}
	return &Table{frames: frames}, nil
}

// Frames returns the frame sequence for a named spinner.
func (t *Table) Frames(name string) ([]string, bool) {
	frames, ok := t.frames[name]
	return frames, ok
}

// Resolve interprets an untrusted spinner value from a show-status command.
// A string resolves against the table; an array is accepted only when every
// element is a string. Anything else, including an unknown name, yields nil
// and the spinner is dropped.
func (t *Table) Resolve(v interface{}) []string {
	switch s := v.(type) {
	case string:
		if frames, ok := t.frames[s]; ok {
			return frames
		}
		return nil
	case []interface{}:
		frames := make([]string, 0, len(s))
		for _, f := range s {
			str, ok := f.(string)
			if !ok {
				return nil
			}
			frames = append(frames, str)
		}
		return frames
	default:
		return nil
	}
}
