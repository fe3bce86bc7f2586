package report

import "sync"

// Recorder keeps every violation it receives.
type Recorder struct {
	mu         sync.Mutex
	violations []*Violation
}

// Report implements Reporter.
func (r *Recorder) Report(v *Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
}

// Violations returns a copy of the recorded violations.
func (r *Recorder) Violations() []*Violation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Codes returns the recorded violation codes in order.
func (r *Recorder) Codes() []Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Code, len(r.violations))
	for i, v := range r.violations {
		out[i] = v.Code
	}
	return out
}

// Reset discards recorded violations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = nil
}
