package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 12

var (
	bcryptGenerate = bcrypt.GenerateFromPassword
	bcryptCompare  = bcrypt.CompareHashAndPassword
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcryptGenerate([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcryptCompare([]byte(hash), []byte(password)) == nil
}
