package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister_InvalidEmail(t *testing.T) {
	p := NewProvider()
	for _, email := range []string{"", "plain", "@nodomain.com", "user@", "user@dotless", "user@.net", "user@trailing."} {
		_, _, err := p.Register(context.Background(), email, "longenoughpassword", "")
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	p := NewProvider()
	_, _, err := p.Register(context.Background(), "user@example.com", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestErrorCodesAreStable(t *testing.T) {
	assert.Equal(t, "auth/email-already-in-use", ErrEmailInUse.Code)
	assert.Equal(t, "auth/invalid-email", ErrInvalidEmail.Code)
	assert.Equal(t, "auth/weak-password", ErrWeakPassword.Code)
	assert.Equal(t, "auth/user-not-found", ErrUserNotFound.Code)
	assert.Equal(t, "auth/wrong-password", ErrWrongPassword.Code)
	assert.Equal(t, "auth/too-many-requests", ErrTooManyRetries.Code)
	assert.Equal(t, "auth/network-request-failed", ErrNetwork.Code)
}
