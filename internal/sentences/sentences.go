// Package sentences loads practice sentences from files.
package sentences

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSentence is used when no usable sentence is available.
const DefaultSentence = "HELLO WORLD"

// DefaultSentences returns the fallback sentence list.
func DefaultSentences() []string {
	return []string{DefaultSentence}
}

// Load reads one sentence per line, uppercased. Blank lines are skipped.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only sentence list.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := Normalize(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("sentence list is empty")
	}
	return lines, nil
}

// Normalize trims and uppercases a sentence.
func Normalize(line string) string {
	return strings.ToUpper(strings.TrimSpace(line))
}

// WriteFile atomically replaces path with one sentence per line.
func WriteFile(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create sentence list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "sentences-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp sentence list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("failed to write sentence list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush sentence list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close sentence list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write sentence list: %w", err)
	}
	return nil
}

// Starter returns the lines written by `klava sentences --init`.
func Starter() []string {
	return []string{
		"HELLO WORLD",
		"THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG",
		"PACK MY BOX WITH FIVE DOZEN LIQUOR JUGS",
		"SPHINX OF BLACK QUARTZ JUDGE MY VOW",
		"HOW VEXINGLY QUICK DAFT ZEBRAS JUMP",
	}
}
