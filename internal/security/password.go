package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor. 10 matches what the original deployment used; raising it
// invalidates nothing since the cost is embedded in each stored hash.
const bcryptCost = 10

// HashPassword hashes a plain text password with bcrypt. Each call salts
// independently, so equal inputs produce different hashes.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
// The comparison inside bcrypt is constant time.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
