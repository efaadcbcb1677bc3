// Package protocol implements the defensive parsing layer for the untrusted
// JSON documents carried by the build socket. Every field read out of a
// decoded document goes through a typed accessor that falls back to a
// caller-supplied default when the actual type does not match; wrong-typed or
// unknown fields never raise.
package protocol

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/buildsock/buildsock/internal/issue"
)

// Command names recognized inside a document's command array.
const (
	CommandShowIssues = "show-issues"
	CommandHideIssues = "hide-issues"
	CommandShowStatus = "show-status"
	CommandHideStatus = "hide-status"
	CommandClear      = "clear"
)

// Decode decodes one wire document. Numbers decode as json.Number so that
// integer fields can be told apart from floats: a peer sending "line": 12.0
// gets the field dropped, same as any other wrong type.
func Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetMap returns v as an object, or def when v is not an object.
func GetMap(v interface{}, def map[string]interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return def
}

// GetString returns the string at key, or def when absent or wrong-typed.
func GetString(m map[string]interface{}, key string, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// GetStringPtr returns the string at key, or nil when absent or wrong-typed.
func GetStringPtr(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

// GetIntPtr returns the integer at key, or nil when the field is absent,
// wrong-typed, or a non-integral number.
func GetIntPtr(m map[string]interface{}, key string) *int {
	switch n := m[key].(type) {
	case json.Number:
		i64, err := n.Int64()
		if err != nil {
			return nil
		}
		i := int(i64)
		return &i
	case int:
		i := n
		return &i
	default:
		return nil
	}
}

// GetArray returns the array at key, or def when absent or wrong-typed.
func GetArray(m map[string]interface{}, key string, def []interface{}) []interface{} {
	if a, ok := m[key].([]interface{}); ok {
		return a
	}
	return def
}

// Document is the validated shape of one wire payload. Commands stay as raw
// objects; each command is re-validated field by field when applied.
type Document struct {
	Project  string
	Commands []map[string]interface{}
}

// ParseDocument validates the top level of a decoded payload. It returns
// ok=false when the payload is not an object or carries no string "project"
// field, in which case the whole document is a no-op.
func ParseDocument(v interface{}) (*Document, bool) {
	root := GetMap(v, map[string]interface{}{})

	project := GetStringPtr(root, "project")
	if project == nil {
		return nil, false
	}

	raw := GetArray(root, "commands", nil)
	commands := make([]map[string]interface{}, 0, len(raw))
	for _, rc := range raw {
		if m, ok := rc.(map[string]interface{}); ok {
			commands = append(commands, m)
		}
	}

	return &Document{Project: *project, Commands: commands}, true
}

// ParseIssue builds an issue from one untrusted issue object. The type string
// maps to the generic kind when unrecognized, message defaults to empty, and
// the relative file path is joined with the project root to produce the
// absolute path.
func ParseIssue(m map[string]interface{}, projectRoot string) *issue.Issue {
	out := &issue.Issue{
		Type:    issue.ParseType(GetString(m, "type", "")),
		Message: GetString(m, "message", ""),
		File:    GetStringPtr(m, "file"),
		Line:    GetIntPtr(m, "line"),
		Column:  GetIntPtr(m, "column"),
		Details: GetStringPtr(m, "details"),
		Tooltip: GetStringPtr(m, "tooltip"),
	}

	// An empty relative path would resolve to the project root itself; the
	// issue stays location-less instead.
	if out.File != nil && *out.File != "" {
		path := filepath.Join(projectRoot, *out.File)
		out.Path = &path
	}
	return out
}

// ParseIssues builds the issue list of a show-issues command. Array elements
// that are not objects parse as empty generic issues rather than being
// dropped, matching the wire contract that malformed fields degrade, never
// fail.
func ParseIssues(raw []interface{}, projectRoot string) []*issue.Issue {
	issues := make([]*issue.Issue, 0, len(raw))
	for _, ri := range raw {
		issues = append(issues, ParseIssue(GetMap(ri, map[string]interface{}{}), projectRoot))
	}
	return issues
}
