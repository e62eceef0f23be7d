// Package generator selects practice sentences.
package generator

import (
	"math/rand"
	"time"
)

// Generator picks sentences for a practice run.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick returns count sentences in random order without repeating one
// until every sentence has been used. A non-positive count returns all of them.
func (g *Generator) Pick(lines []string, count int) []string {
	if len(lines) == 0 {
		return nil
	}
	if count <= 0 {
		count = len(lines)
	}
	result := make([]string, 0, count)
	for len(result) < count {
		for _, idx := range g.rnd.Perm(len(lines)) {
			if len(result) == count {
				break
			}
			result = append(result, lines[idx])
		}
	}
	return result
}

// PickWeighted selects sentences with a bias toward weak keys.
func (g *Generator) PickWeighted(lines []string, count int, weakSet map[rune]struct{}, factor float64) []string {
	if len(lines) == 0 {
		return nil
	}
	if count <= 0 {
		count = len(lines)
	}
	weights := make([]float64, len(lines))
	total := 0.0
	for i, line := range lines {
		weakCount := 0
		for _, r := range line {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*factor
		weights[i] = w
		total += w
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(lines) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, lines[idx])
	}
	return result
}
