package main

import (
	"strings"
	"testing"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	require.NoError(t, run(strings.NewReader("secret1\n"), &out, 4))

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
	assert.NoError(t, auth.NewBcryptVerifier(4).Compare(hash, "secret1"))
}

func TestRunRejectsWeakPassword(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	err := run(strings.NewReader("123"), &out, 4)
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	assert.Empty(t, out.String())
}
