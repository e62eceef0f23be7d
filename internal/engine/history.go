package engine

import "time"

// Keystroke is one evaluated key press.
type Keystroke struct {
	Char    rune
	At      time.Time
	Correct bool
}

// history keeps keystrokes in arrival order and drops the ones no detector can see.
type history struct {
	items []Keystroke
	head  int
}

func (h *history) push(k Keystroke) {
	h.items = append(h.items, k)
}

func (h *history) evictBefore(cutoff time.Time) {
	for h.head < len(h.items) && h.items[h.head].At.Before(cutoff) {
		h.head++
	}
	// Compact once the dead prefix dominates the backing array.
	if h.head > 0 && h.head*2 >= len(h.items) {
		n := copy(h.items, h.items[h.head:])
		h.items = h.items[:n]
		h.head = 0
	}
}

// wrongSince counts wrong keystrokes at or after cutoff.
func (h *history) wrongSince(cutoff time.Time) int {
	count := 0
	for i := len(h.items) - 1; i >= h.head; i-- {
		k := h.items[i]
		if k.At.Before(cutoff) {
			break
		}
		if !k.Correct {
			count++
		}
	}
	return count
}

func (h *history) len() int {
	return len(h.items) - h.head
}

func (h *history) snapshot() []Keystroke {
	out := make([]Keystroke, h.len())
	copy(out, h.items[h.head:])
	return out
}

func (h *history) clear() {
	h.items = h.items[:0]
	h.head = 0
}
