package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// bindingKey separates credential-binding digests from any other BLAKE3 use.
var bindingKey = [32]byte{
	'c', 'o', 'g', 'e', 'r', 'e', '.', 's', 'e', 's', 's', 'i', 'o', 'n', '.',
	'b', 'i', 'n', 'd', 'i', 'n', 'g', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// User is an interactive account from the users table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
}

// CredentialBinding returns a digest of the stored password hash. Sessions
// remember the binding they were created with; a password change yields a new
// binding and therefore orphans every existing session of the account.
func (u *User) CredentialBinding() string {
	h, err := blake3.NewKeyed(bindingKey[:])
	if err != nil {
		// The key is a fixed 32-byte array, NewKeyed cannot reject it.
		panic(err)
	}
	_, _ = h.Write([]byte(u.PasswordHash))
	return hex.EncodeToString(h.Sum(nil))
}

// MachineKey is a service-account credential from the machine_keys table.
type MachineKey struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	GroupID     uuid.UUID `json:"group_id"`
	KeyHash     string    `json:"-"`
}
