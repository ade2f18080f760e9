package auth

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	// Cost 12 makes every handler test take ~250ms per hash.
	bcryptGenerate = func(pw []byte, _ int) ([]byte, error) {
		return bcrypt.GenerateFromPassword(pw, bcrypt.MinCost)
	}
	os.Exit(m.Run())
}
