package harness

import "github.com/roach88/marbles/internal/ir"

// TraceEntry is what one scenario expectation observed.
type TraceEntry struct {
	// Source names the scenario source the entry is about.
	Source string `json:"source"`

	// Kind is KindObservable or KindSubscriptions.
	Kind string `json:"kind"`

	// Events holds the observed timeline (KindObservable only).
	Events ir.Timeline `json:"events,omitempty"`

	// Subscriptions holds the subscription logs (KindSubscriptions only).
	Subscriptions []ir.SubscriptionLog `json:"subscriptions,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Trace lists observations in expectation order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Frame is the clock's frame once it drained.
	Frame int64 `json:"frame"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// canonicalTrace converts the trace into plain maps for ir.MarshalCanonical.
func canonicalTrace(name string, trace []TraceEntry) map[string]any {
	entries := make([]any, len(trace))
	for i, t := range trace {
		m := map[string]any{
			"source": t.Source,
			"kind":   t.Kind,
		}
		switch t.Kind {
		case KindObservable:
			m["events"] = ir.Normalize(t.Events)
		case KindSubscriptions:
			logs := t.Subscriptions
			if logs == nil {
				logs = []ir.SubscriptionLog{}
			}
			m["subscriptions"] = logs
		}
		entries[i] = m
	}
	return map[string]any{
		"scenario": name,
		"trace":    entries,
	}
}
