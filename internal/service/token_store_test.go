package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cookbook/backend/internal/service"
)

func TestMemoryTokenStore(t *testing.T) {
	store := service.NewMemoryTokenStore()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	service.SetTokenStoreClock(store, func() time.Time { return now })

	revoked, err := store.Revoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))
	require.NoError(t, store.Revoke(ctx, "jti-expired", 0))

	revoked, _ = store.Revoked(ctx, "jti-1")
	assert.True(t, revoked)
	revoked, _ = store.Revoked(ctx, "jti-expired")
	assert.False(t, revoked, "tokens that already expired are not recorded")

	now = now.Add(time.Hour)
	revoked, _ = store.Revoked(ctx, "jti-1")
	assert.False(t, revoked, "entries lapse with the token")
}
