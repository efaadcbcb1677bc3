package protocol

import (
	"testing"

	"github.com/buildsock/buildsock/internal/issue"
)

func decode(t *testing.T, data string) interface{} {
	t.Helper()
	v, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("failed to decode %q: %v", data, err)
	}
	return v
}

// TestDecodeMalformed tests that syntactically invalid JSON fails to decode
func TestDecodeMalformed(t *testing.T) {
	for _, data := range []string{"", "{", "not json", `{"a": }`} {
		if _, err := Decode([]byte(data)); err == nil {
			t.Errorf("expected decode error for %q", data)
		}
	}
}

// TestGetString tests the string accessor's fallback behavior
func TestGetString(t *testing.T) {
	m := GetMap(decode(t, `{"s": "hello", "n": 5, "b": true}`), nil)

	if got := GetString(m, "s", "def"); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if got := GetString(m, "n", "def"); got != "def" {
		t.Errorf("wrong-typed field must fall back, got %q", got)
	}
	if got := GetString(m, "missing", "def"); got != "def" {
		t.Errorf("absent field must fall back, got %q", got)
	}
}

// TestGetIntPtr tests integer extraction, including float rejection
func TestGetIntPtr(t *testing.T) {
	m := GetMap(decode(t, `{"i": 12, "f": 12.5, "fz": 12.0, "s": "12", "neg": -3}`), nil)

	if got := GetIntPtr(m, "i"); got == nil || *got != 12 {
		t.Errorf("expected 12, got %v", got)
	}
	if got := GetIntPtr(m, "neg"); got == nil || *got != -3 {
		t.Errorf("expected -3, got %v", got)
	}
	if got := GetIntPtr(m, "f"); got != nil {
		t.Errorf("float must yield nil, got %d", *got)
	}
	// 12.0 carries a fractional part on the wire, so it is not an integer.
	if got := GetIntPtr(m, "fz"); got != nil {
		t.Errorf("12.0 must yield nil, got %d", *got)
	}
	if got := GetIntPtr(m, "s"); got != nil {
		t.Errorf("numeric string must yield nil, got %d", *got)
	}
	if got := GetIntPtr(m, "missing"); got != nil {
		t.Errorf("absent field must yield nil, got %d", *got)
	}
}

// TestGetMapAndArray tests the container accessors' fallbacks
func TestGetMapAndArray(t *testing.T) {
	v := decode(t, `{"arr": [1, 2], "obj": {"k": "v"}, "s": "x"}`)

	root := GetMap(v, nil)
	if root == nil {
		t.Fatal("expected object at top level")
	}

	if a := GetArray(root, "arr", nil); len(a) != 2 {
		t.Errorf("expected 2 elements, got %d", len(a))
	}
	if a := GetArray(root, "s", nil); a != nil {
		t.Errorf("wrong-typed field must fall back, got %v", a)
	}
	if m := GetMap(root["obj"], nil); m == nil || GetString(m, "k", "") != "v" {
		t.Error("nested object accessor failed")
	}
	if m := GetMap(root["s"], map[string]interface{}{}); len(m) != 0 {
		t.Errorf("wrong-typed value must fall back to default map, got %v", m)
	}
	if m := GetMap(decode(t, `[1, 2]`), nil); m != nil {
		t.Error("array at top level must not parse as object")
	}
}

// TestParseDocument tests top-level document validation
func TestParseDocument(t *testing.T) {
	doc, ok := ParseDocument(decode(t, `{"project": "/proj", "commands": [{"command": "clear"}, "junk", {"command": "hide-issues"}]}`))
	if !ok {
		t.Fatal("expected valid document")
	}
	if doc.Project != "/proj" {
		t.Errorf("expected project '/proj', got %q", doc.Project)
	}
	// Non-object command elements are dropped, not fatal.
	if len(doc.Commands) != 2 {
		t.Errorf("expected 2 commands, got %d", len(doc.Commands))
	}
}

// TestParseDocumentRejected tests payloads that make the document a no-op
func TestParseDocumentRejected(t *testing.T) {
	for _, data := range []string{
		`{"commands": []}`,
		`{"project": 42}`,
		`{"project": null}`,
		`[1, 2, 3]`,
		`"just a string"`,
		`12`,
	} {
		if _, ok := ParseDocument(decode(t, data)); ok {
			t.Errorf("expected rejection for %s", data)
		}
	}
}

// TestParseDocumentWithoutCommands tests that a missing command array is
// still a valid document
func TestParseDocumentWithoutCommands(t *testing.T) {
	doc, ok := ParseDocument(decode(t, `{"project": "/proj"}`))
	if !ok {
		t.Fatal("expected valid document")
	}
	if len(doc.Commands) != 0 {
		t.Errorf("expected no commands, got %d", len(doc.Commands))
	}
}

// TestParseIssue tests building an issue from an untrusted object
func TestParseIssue(t *testing.T) {
	m := GetMap(decode(t, `{"type": "error", "message": "boom", "file": "src/main.c", "line": 3, "column": 7, "details": "d", "tooltip": "t"}`), nil)

	is := ParseIssue(m, "/proj")
	if is.Type != issue.TypeError {
		t.Errorf("expected error type, got %v", is.Type)
	}
	if is.Message != "boom" {
		t.Errorf("expected message 'boom', got %q", is.Message)
	}
	if is.File == nil || *is.File != "src/main.c" {
		t.Errorf("unexpected file: %v", is.File)
	}
	if is.Path == nil || *is.Path != "/proj/src/main.c" {
		t.Errorf("unexpected path: %v", is.Path)
	}
	if is.Line == nil || *is.Line != 3 {
		t.Errorf("unexpected line: %v", is.Line)
	}
	if is.Column == nil || *is.Column != 7 {
		t.Errorf("unexpected column: %v", is.Column)
	}
	if is.Details == nil || *is.Details != "d" {
		t.Errorf("unexpected details: %v", is.Details)
	}
	if is.Tooltip == nil || *is.Tooltip != "t" {
		t.Errorf("unexpected tooltip: %v", is.Tooltip)
	}
}

// TestParseIssueDefaults tests degradation of absent and wrong-typed fields
func TestParseIssueDefaults(t *testing.T) {
	is := ParseIssue(GetMap(decode(t, `{}`), nil), "/proj")
	if is.Type != issue.TypeGeneric {
		t.Errorf("expected generic type, got %v", is.Type)
	}
	if is.Message != "" {
		t.Errorf("expected empty message, got %q", is.Message)
	}
	if is.File != nil || is.Path != nil || is.Line != nil || is.Column != nil {
		t.Error("expected all optional fields nil")
	}

	is = ParseIssue(GetMap(decode(t, `{"type": "catastrophe", "message": 5, "file": 1, "line": "3"}`), nil), "/proj")
	if is.Type != issue.TypeGeneric {
		t.Errorf("unknown type string must map to generic, got %v", is.Type)
	}
	if is.Message != "" {
		t.Errorf("wrong-typed message must fall back, got %q", is.Message)
	}
	if is.File != nil || is.Line != nil {
		t.Error("wrong-typed file and line must be dropped")
	}
}

// TestParseIssueEmptyFile tests that an empty relative path yields no
// location instead of resolving to the project root
func TestParseIssueEmptyFile(t *testing.T) {
	is := ParseIssue(GetMap(decode(t, `{"message": "boom", "file": ""}`), nil), "/proj")
	if is.File == nil || *is.File != "" {
		t.Errorf("file field must be preserved as provided, got %v", is.File)
	}
	if is.Path != nil {
		t.Errorf("empty file must not resolve to a path, got %q", *is.Path)
	}
}

// TestParseIssues tests parsing the issue array of a show-issues command
func TestParseIssues(t *testing.T) {
	root := GetMap(decode(t, `{"issues": [{"message": "a"}, 42, {"message": "b"}]}`), nil)
	issues := ParseIssues(GetArray(root, "issues", nil), "/proj")

	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Message != "a" || issues[2].Message != "b" {
		t.Error("unexpected messages")
	}
	// A non-object element parses as an empty generic issue.
	if issues[1].Type != issue.TypeGeneric || issues[1].Message != "" {
		t.Error("non-object element must parse as empty generic issue")
	}
}
