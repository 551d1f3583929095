package claims

// oneOf reports whether got equals any of the allowed values.
func oneOf(got string, allowed []string) bool {
	for _, v := range allowed {
		if got == v {
			return true
		}
	}
	return false
}

// Overlaps reports whether the two sets share at least one element.
func Overlaps(got, allowed []string) bool {
	for _, g := range got {
		if oneOf(g, allowed) {
			return true
		}
	}
	return false
}
