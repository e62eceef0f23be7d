// Package keyboard describes the on-screen keyboard and its finger colors.
package keyboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rows is the letter layout, top to bottom. The space bar sits below.
var Rows = [][]rune{
	[]rune("QWERTYUIOP"),
	[]rune("ASDFGHJKL"),
	[]rune("ZXCVBNM"),
}

// Space is the key value of the space bar.
const Space = ' '

// Model assigns keys to fingers and fingers to colors.
type Model struct {
	groups  map[string][]rune
	colors  map[string]string
	fingers map[rune]string
}

// DefaultModel returns the standard eight-finger touch typing assignment.
func DefaultModel() *Model {
	m, err := NewModel(map[string]string{
		"left_pinky":   "AQZ",
		"left_ring":    "SWX",
		"left_middle":  "DEC",
		"left_index":   "FRVGTB",
		"right_index":  "JUMHYN",
		"right_middle": "KI",
		"right_ring":   "LO",
		"right_pinky":  "P",
	}, map[string]string{
		"left_pinky":   "#e53935",
		"left_ring":    "#6d4c41",
		"left_middle":  "#fdd835",
		"left_index":   "#43a047",
		"right_index":  "#fb8c00",
		"right_middle": "#3949ab",
		"right_ring":   "#8e24aa",
		"right_pinky":  "#1e88e5",
	})
	if err != nil {
		panic(err)
	}
	return m
}

// NewModel builds a model from finger -> keys and finger -> color maps.
func NewModel(groups, colors map[string]string) (*Model, error) {
	m := &Model{
		groups:  map[string][]rune{},
		colors:  map[string]string{},
		fingers: map[rune]string{},
	}
	for finger, keys := range groups {
		color, ok := colors[finger]
		if !ok {
			return nil, fmt.Errorf("finger %q has no color", finger)
		}
		m.colors[finger] = color
		for _, r := range strings.ToUpper(keys) {
			if other, dup := m.fingers[r]; dup && other != finger {
				return nil, fmt.Errorf("key %q assigned to both %q and %q", r, other, finger)
			}
			m.fingers[r] = finger
			m.groups[finger] = append(m.groups[finger], r)
		}
	}
	return m, nil
}

// Has reports whether r has a key on the board.
func (m *Model) Has(r rune) bool {
	if r == Space {
		return true
	}
	for _, row := range Rows {
		for _, k := range row {
			if k == r {
				return true
			}
		}
	}
	return false
}

// FingerFor returns the finger assigned to r.
func (m *Model) FingerFor(r rune) (string, bool) {
	finger, ok := m.fingers[r]
	return finger, ok
}

// ColorFor returns the finger color for r.
func (m *Model) ColorFor(r rune) (string, bool) {
	finger, ok := m.fingers[r]
	if !ok {
		return "", false
	}
	return m.colors[finger], true
}

// Fingers returns finger names ordered left to right by their leftmost key.
func (m *Model) Fingers() []string {
	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	col := func(name string) int {
		best := 1 << 30
		for _, r := range m.groups[name] {
			if c := column(r); c < best {
				best = c
			}
		}
		return best
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := col(names[i]), col(names[j])
		if ci == cj {
			return names[i] < names[j]
		}
		return ci < cj
	})
	return names
}

// Color returns the color of a finger.
func (m *Model) Color(finger string) string {
	return m.colors[finger]
}

func column(r rune) int {
	for _, row := range Rows {
		for i, k := range row {
			if k == r {
				return i
			}
		}
	}
	return 1 << 30
}

// Lighten blends a #rrggbb color toward white by factor in [0, 1].
func Lighten(hex string, factor float64) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return hex
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return hex
	}
	channel := func(c uint64) int {
		return int(float64(c) + (255-float64(c))*factor)
	}
	r := channel(v >> 16 & 0xff)
	g := channel(v >> 8 & 0xff)
	b := channel(v & 0xff)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
