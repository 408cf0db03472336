package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the bcrypt digest stored for each seeded account, so
// the credential table never holds a plaintext password.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches a digest from HashPassword.
// A malformed digest counts as a mismatch.
func CheckPassword(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
