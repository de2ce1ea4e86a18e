package pkg

import "golang.org/x/crypto/bcrypt"

const MinPasswordLength = 6

// PasswordHasher wraps bcrypt. A zero Cost means bcrypt.DefaultCost.
type PasswordHasher struct {
	Cost int
}

func (h PasswordHasher) Hash(p string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(p), cost)
	return string(b), err
}

func (h PasswordHasher) Matches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
