package entity

// Location represents one canteen, keyed by its 4-digit code.
// Clients only ever existence-check locations; the documents themselves
// are provisioned out of band (see cmd/seed).
type Location struct {
	ID   string // The 4-digit canteen code, primary key.
	Name string // Human-readable canteen name.
}

// IsValidLocationCode reports whether s has the shape of a canteen code:
// exactly four ASCII digits.
func IsValidLocationCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
