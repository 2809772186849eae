package auth

import "golang.org/x/crypto/bcrypt"

// Hasher performs one-way password hashing and verification using bcrypt.
// Each call to Hash salts independently, so equal plaintexts produce
// distinct digests.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given bcrypt cost factor.
// Costs outside bcrypt's supported range fall back to the default cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of the given plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext hashes to digest. A structurally
// invalid digest is a verification failure, never an error.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
