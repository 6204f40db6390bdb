package repository

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200

	DefaultPresenceLimit = 20
	MaxPresenceLimit     = 100
)

// normalizeLimit clamps a caller-supplied limit into [1, max], falling back
// to def when the caller passed nothing. Every list query in this package is
// bounded through it.
func normalizeLimit(limit, def, max int) int {
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
