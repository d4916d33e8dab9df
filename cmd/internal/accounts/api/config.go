package accountsapi

// DefaultMaxBodyBytes caps request bodies when Config leaves it unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config controls accounts API limits.
type Config struct {
	MaxBodyBytes int64
}
