package stats

import (
	"strings"
	"testing"
)

func TestRenderTableRightAligns(t *testing.T) {
	headers := []string{"Key", "Accuracy", "Correct"}
	rows := [][]string{
		{"A", "97.50%", "12"},
		{"<space>", "8.00%", "3"},
	}
	out := renderTable(headers, rows, map[int]bool{1: true, 2: true})
	if !strings.Contains(out, "Key") || !strings.Contains(out, "Accuracy") {
		t.Fatalf("missing headers:\n%s", out)
	}
	var first, second string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "97.50%"):
			first = line
		case strings.Contains(line, "8.00%"):
			second = line
		}
	}
	if first == "" || second == "" {
		t.Fatalf("missing rows:\n%s", out)
	}
	if end(first, "97.50%") != end(second, "8.00%") {
		t.Fatalf("accuracy column not right aligned:\n%s", out)
	}
	if strings.Index(first, "A") != strings.Index(second, "<space>") {
		t.Fatalf("key column not left aligned:\n%s", out)
	}
}

func end(line, cell string) int {
	return strings.Index(line, cell) + len(cell)
}
