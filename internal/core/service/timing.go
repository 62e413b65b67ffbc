package service

import (
	"crypto/rand"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against whenever the account or key being
// authenticated does not exist, so that an unknown principal costs the same
// hash comparison as a wrong secret.
var dummyHash = sync.OnceValue(func() string {
	seed := make([]byte, 32)
	_, _ = rand.Read(seed)
	h, err := bcrypt.GenerateFromPassword(seed, bcrypt.DefaultCost)
	if err != nil {
		panic("service: generating dummy credential hash: " + err.Error())
	}
	return string(h)
})
