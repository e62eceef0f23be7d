package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	p := NewProgress(3)
	assert.Equal(t, 0, p.Percent())
	p.Step()
	assert.Equal(t, 33, p.Percent())
	p.Step()
	assert.Equal(t, 66, p.Percent())
	p.Step()
	assert.Equal(t, 100, p.Percent())
}

func TestProgressSaturates(t *testing.T) {
	p := NewProgress(2)
	for i := 0; i < 5; i++ {
		p.Step()
	}
	assert.Equal(t, 2, p.Current())
	assert.Equal(t, 100, p.Percent())
}

func TestProgressZeroTotal(t *testing.T) {
	for _, total := range []int{0, -4} {
		p := NewProgress(total)
		p.Step()
		assert.Equal(t, 0, p.Percent())
		assert.Equal(t, 0, p.Current())
	}
}

func TestProgressReset(t *testing.T) {
	p := NewProgress(4)
	p.Step()
	p.Step()
	p.Reset(10)
	assert.Equal(t, 10, p.Total())
	assert.Equal(t, 0, p.Current())
	p.Step()
	assert.Equal(t, 10, p.Percent())
}
