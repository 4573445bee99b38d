package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// BurnPasswordCheck spends the same time as a real check against an unknown user,
// so response timing does not reveal which usernames exist.
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
		dummyHash = string(hashed)
	})
	_ = CheckPassword(dummyHash, password)
}
