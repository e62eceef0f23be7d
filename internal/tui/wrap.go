package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// sentenceStyles is the palette used for one render of the sentence.
type sentenceStyles struct {
	typed   lipgloss.Style
	word    lipgloss.Style
	pending lipgloss.Style
	wrong   lipgloss.Style
}

// buildStyledRunes styles target with pos runes already typed. The rune at pos
// is the cursor; flash marks it as a miss.
func buildStyledRunes(target []rune, pos int, flash bool, st sentenceStyles) []styledRune {
	words := findWords(target)
	cursor := -1
	if pos < len(target) {
		cursor = pos
	}
	currentWord := wordForCursor(words, cursor)

	out := make([]styledRune, 0, len(target))
	for i, r := range target {
		style := st.pending
		switch {
		case i < pos:
			style = st.typed
		case i == cursor && flash:
			style = st.wrong
		case r != ' ' && currentWord != nil && i >= currentWord.start && i < currentWord.end:
			style = st.word
		}
		if i == cursor {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(target []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range target {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordForCursor returns the word holding the cursor, or the next one when the
// cursor sits on a space. A cursor past the end has no word.
func wordForCursor(words []wordRange, cursor int) *wordRange {
	if cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or mid-word
// when a word is longer than a line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	flush := func(upTo, resume int) {
		out.WriteString(renderStyledRunes(line[:upTo]))
		out.WriteByte('\n')
		line = append([]styledRune{}, line[resume:]...)
		lineWidth = 0
		lastSpace = -1
		for i, item := range line {
			lineWidth += item.width
			if item.isSpace {
				lastSpace = i
			}
		}
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				flush(lastSpace, lastSpace+1)
			} else {
				flush(len(line), len(line))
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}
