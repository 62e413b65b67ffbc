package domain

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCredentials_NeverFormatPassword(t *testing.T) {
	creds := Credentials{Username: "alice", Password: "hunter2", Next: "/plugins"}

	for _, out := range []string{
		creds.String(),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		fmt.Sprintf("%#v", creds),
		fmt.Sprint(&creds),
	} {
		assert.NotContains(t, out, "hunter2")
		assert.Contains(t, out, "alice")
	}

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	log.Info().Object("credentials", creds).Msg("login")
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), `"username":"alice"`)
}

func TestUser_CredentialBinding(t *testing.T) {
	u := User{Username: "alice", PasswordHash: "$2a$10$first"}
	first := u.CredentialBinding()

	assert.Len(t, first, 64)
	assert.Equal(t, first, u.CredentialBinding(), "binding must be deterministic")
	assert.NotContains(t, first, "first")

	u.PasswordHash = "$2a$10$second"
	assert.NotEqual(t, first, u.CredentialBinding(), "binding must change with the password hash")
}

func TestUser_JSONHidesHash(t *testing.T) {
	u := User{Username: "alice", PasswordHash: "$2a$10$secret"}
	assert.NotContains(t, string(mustJSON(t, u)), "secret")
	assert.NotContains(t, string(mustJSON(t, MachineKey{KeyHash: "$2a$10$secret"})), "secret")
}
