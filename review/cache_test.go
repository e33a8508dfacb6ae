package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRatingCache(t *testing.T) {
	cache, err := NewRatingCache(context.Background(), time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	_, found, err := cache.Lookup("p1")
	require.NoError(t, err)
	require.False(t, found)

	r := Rating{ProductID: "p1", Count: 3, Average: 4.333}
	require.NoError(t, cache.Save(r))
	got, found, err := cache.Lookup("p1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, r, got)

	require.NoError(t, cache.Forget("p1"))
	require.NoError(t, cache.Forget("p1"), "forgetting twice is not an error")
	_, found, err = cache.Lookup("p1")
	require.NoError(t, err)
	require.False(t, found)
}
