package sentences

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type letters string

func (l letters) Has(r rune) bool {
	for _, c := range l {
		if c == r {
			return true
		}
	}
	return false
}

func TestFilterForKeyboard(t *testing.T) {
	keys := letters("ABCDEFGHIJKLMNOPQRSTUVWXYZ ")
	kept, rejected := FilterForKeyboard([]string{"HELLO WORLD", "DON'T", "NAÏVE", "OK"}, keys)
	assert.Equal(t, []string{"HELLO WORLD", "OK"}, kept)
	assert.Equal(t, []string{"DON'T", "NAÏVE"}, rejected)
}
