package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	traceID := GetTraceID(traced)
	assert.Len(t, traceID, 32)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "parent context is unchanged")
	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool, 500)
	for i := 0; i < 500; i++ {
		id := generateTraceID()
		require.False(t, seen[id], "duplicate trace id %s", id)
		seen[id] = true
	}

	fallback := fallbackTraceID()
	assert.Len(t, fallback, 32)
	_, err := hex.DecodeString(fallback)
	assert.NoError(t, err)
}

func TestUserContext(t *testing.T) {
	t.Parallel()

	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserFromContext(WithUser(context.Background(), nil))
	assert.False(t, ok, "nil users are not authenticated")

	user, err := domain.NewUser("erin@gmail.com", "hash", "Erin", "9876543210", "")
	require.NoError(t, err)

	got, ok := UserFromContext(WithUser(context.Background(), user))
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
}
