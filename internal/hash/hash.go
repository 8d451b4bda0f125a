package hash

import "golang.org/x/crypto/bcrypt"

// Cost 12 keeps a single verify in the tens of milliseconds, which is the
// point: offline guessing has to pay the same price per attempt.
const cost = 12

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether password matches the stored hash.
// A mismatch is a normal negative result, not an error.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
