// Package engine implements the typing logic: matching, progress, and the input guard.
package engine

// Progress counts correct keystrokes against a total.
type Progress struct {
	total   int
	current int
}

// NewProgress returns a tracker for a sentence of the given length.
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Step counts one correct keystroke. It saturates at the total.
func (p *Progress) Step() {
	if p.current >= p.total {
		return
	}
	p.current++
}

// Percent returns the truncated completion percentage, or 0 for an empty total.
func (p *Progress) Percent() int {
	if p.total <= 0 {
		return 0
	}
	return p.current * 100 / p.total
}

// Reset reinitializes the tracker for a new sentence.
func (p *Progress) Reset(total int) {
	p.total = total
	p.current = 0
}

// Current returns the number of counted keystrokes.
func (p *Progress) Current() int {
	return p.current
}

// Total returns the configured total.
func (p *Progress) Total() int {
	return p.total
}
