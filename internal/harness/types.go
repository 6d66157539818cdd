package harness

// TraceEvent is the outcome of one scenario step.
type TraceEvent struct {
	Step    int         `json:"step"`
	Op      string      `json:"op"`
	Subject string      `json:"subject"`
	As      string      `json:"as,omitempty"`
	Output  any         `json:"output,omitempty"`
	Error   *TraceError `json:"error,omitempty"`
}

// TraceError is the validation error a step produced.
type TraceError struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a step outcome to the trace.
func (r *Result) AddEvent(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
