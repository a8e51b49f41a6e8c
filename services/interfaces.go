package services

// PasswordHasher abstracts password hashing so the hashing scheme can be
// swapped or faked in tests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil when password matches hashedPassword.
	Verify(hashedPassword, password string) error
}
