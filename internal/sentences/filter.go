package sentences

// KeySet reports whether a character has a key on the on-screen keyboard.
type KeySet interface {
	Has(r rune) bool
}

// FilterForKeyboard splits lines into those fully typeable on keys and the rest.
func FilterForKeyboard(lines []string, keys KeySet) (kept, rejected []string) {
	for _, line := range lines {
		if typeable(line, keys) {
			kept = append(kept, line)
		} else {
			rejected = append(rejected, line)
		}
	}
	return kept, rejected
}

func typeable(line string, keys KeySet) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if !keys.Has(r) {
			return false
		}
	}
	return true
}
