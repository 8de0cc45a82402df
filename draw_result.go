package bingo

// DrawStatus is the outcome of a single draw
type DrawStatus int

const (
	// DrawFailed means the random source failed and nothing was drawn
	DrawFailed DrawStatus = iota
	// DrawSuccess means a new number was drawn
	DrawSuccess
	// DrawExhausted means every number in the pool had already been drawn
	DrawExhausted
)

func (s DrawStatus) String() string {
	switch s {
	case DrawFailed:
		return "failed"
	case DrawSuccess:
		return "success"
	case DrawExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// DrawResult represents the result of a single draw
type DrawResult struct {
	Status    DrawStatus `json:"status"`           // Failed, success or exhausted
	Number    int        `json:"number,omitempty"` // Drawn number, zero when exhausted
	Count     int        `json:"count"`            // Numbers drawn so far, this one included
	Remaining int        `json:"remaining"`        // Numbers still in the pool
}

// Ok reports whether a number was drawn
func (r DrawResult) Ok() bool { return r.Status == DrawSuccess }

// IsExhausted reports whether the draw found the pool empty
func (r DrawResult) IsExhausted() bool { return r.Status == DrawExhausted }

// Label returns the call label, e.g. "B-7", or "" when nothing was drawn
func (r DrawResult) Label() string {
	if !r.Ok() {
		return ""
	}
	return CallLabel(r.Number)
}

// MultiDrawResult represents the result of an auto-call of several draws
type MultiDrawResult struct {
	Results        []int `json:"results,omitempty"` // Numbers drawn, in order
	TotalRequested int   `json:"total_requested"`   // Total number of draws requested
	Completed      int   `json:"completed"`         // Number of draws completed successfully
	PartialSuccess bool  `json:"partial_success"`   // Some but not all requested draws completed
	Exhausted      bool  `json:"exhausted"`         // The pool is empty after the run
}

// Validate validates the multi-draw result data
func (mdr *MultiDrawResult) Validate() error {
	if mdr.TotalRequested <= 0 {
		return ErrInvalidCount
	}
	if mdr.Completed < 0 || mdr.Completed > mdr.TotalRequested {
		return ErrInvalidParameters
	}
	if len(mdr.Results) != mdr.Completed {
		return ErrInvalidParameters
	}
	return nil
}

// IsComplete returns true if all requested draws have been completed
func (mdr *MultiDrawResult) IsComplete() bool {
	return mdr.Completed >= mdr.TotalRequested
}

// SuccessRate returns the success rate as a percentage
func (mdr *MultiDrawResult) SuccessRate() float64 {
	if mdr.TotalRequested == 0 {
		return 0.0
	}
	return float64(mdr.Completed) / float64(mdr.TotalRequested) * 100.0
}
