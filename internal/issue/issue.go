// Package issue defines the diagnostic data model: issues, projects and the
// value-equality rules used to decide whether a displayed set actually changed.
package issue

// Type classifies a diagnostic
type Type int

const (
	// TypeGeneric is the fallback kind for unknown type strings
	TypeGeneric Type = iota
	// TypeInfo is an informational diagnostic
	TypeInfo
	// TypeWarning is a warning
	TypeWarning
	// TypeError is an error
	TypeError
)

// String returns the wire name of the issue type
func (t Type) String() string {
	switch t {
	case TypeInfo:
		return "info"
	case TypeWarning:
		return "warning"
	case TypeError:
		return "error"
	default:
		return "generic"
	}
}

// ParseType maps a wire type string to a Type. Anything outside
// {info, warning, error} maps to TypeGeneric.
func ParseType(s string) Type {
	switch s {
	case "info":
		return TypeInfo
	case "warning":
		return TypeWarning
	case "error":
		return TypeError
	default:
		return TypeGeneric
	}
}

// Issue is one diagnostic. Optional fields are pointers so that an absent
// field stays distinguishable from an empty string or zero. Issues are
// immutable once constructed.
type Issue struct {
	Type    Type
	Message string

	// Path is the absolute location, File the path relative to the project
	// root. Line and Column are 1-based; Column is meaningless without Line.
	Path    *string
	File    *string
	Line    *int
	Column  *int
	Details *string
	Tooltip *string
}

// Equal reports full field equality between two issues.
func (i *Issue) Equal(other *Issue) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Type == other.Type &&
		i.Message == other.Message &&
		strPtrEqual(i.Path, other.Path) &&
		strPtrEqual(i.File, other.File) &&
		intPtrEqual(i.Line, other.Line) &&
		intPtrEqual(i.Column, other.Column) &&
		strPtrEqual(i.Details, other.Details) &&
		strPtrEqual(i.Tooltip, other.Tooltip)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetEqual reports whether two issue collections hold the same issues by
// value, ignoring order. Duplicates count: {a, a} is not equal to {a}.
func SetEqual(a, b []*Issue) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
outer:
	for _, ia := range a {
		for j, ib := range b {
			if matched[j] {
				continue
			}
			if ia.Equal(ib) {
				matched[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// Project is one monitored source tree, keyed by its absolute root path.
// A nil Issues slice means no diagnostics are currently shown; a nil
// StatusSpinner means the status message is static. Projects are mutated
// exclusively by the protocol processor.
type Project struct {
	Path          string
	Issues        []*Issue
	StatusMessage *string
	StatusSpinner []string
}

// NewProject creates an empty project for the given root path.
func NewProject(path string) *Project {
	return &Project{Path: path}
}
