package socketclient

// Request is one wire document: a project root plus an ordered command array.
type Request struct {
	Project  string    `json:"project"`
	Commands []Command `json:"commands"`
}

// Command is one instruction inside a request
type Command struct {
	Command string      `json:"command"`
	Issues  []Issue     `json:"issues,omitempty"`
	Message string      `json:"message,omitempty"`
	Spinner interface{} `json:"spinner,omitempty"`
}

// Issue is the wire form of one diagnostic
type Issue struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Details string `json:"details,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
}

// NewRequest creates an empty request for the given project root
func NewRequest(project string) *Request {
	return &Request{Project: project}
}

// ShowIssues appends a show-issues command
func (r *Request) ShowIssues(issues ...Issue) *Request {
	if issues == nil {
		issues = []Issue{}
	}
	r.Commands = append(r.Commands, Command{Command: "show-issues", Issues: issues})
	return r
}

// HideIssues appends a hide-issues command
func (r *Request) HideIssues() *Request {
	r.Commands = append(r.Commands, Command{Command: "hide-issues"})
	return r
}

// ShowStatus appends a show-status command. The spinner may be a spinner
// name, a slice of frame strings, or nil for static text.
func (r *Request) ShowStatus(message string, spinner interface{}) *Request {
	r.Commands = append(r.Commands, Command{Command: "show-status", Message: message, Spinner: spinner})
	return r
}

// HideStatus appends a hide-status command
func (r *Request) HideStatus() *Request {
	r.Commands = append(r.Commands, Command{Command: "hide-status"})
	return r
}

// Clear appends a clear command
func (r *Request) Clear() *Request {
	r.Commands = append(r.Commands, Command{Command: "clear"})
	return r
}
