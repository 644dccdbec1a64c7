package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapCache struct {
	data    map[string][]byte
	failGet bool
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapCache) Invalidate(_ context.Context, prefix string) error {
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

type summary struct {
	Paid int `json:"paid"`
}

func TestRemember(t *testing.T) {
	c := &mapCache{data: map[string][]byte{}}
	calls := 0
	load := func(context.Context) (summary, error) {
		calls++
		return summary{Paid: calls}, nil
	}

	v, err := Remember(context.Background(), c, zap.NewNop(), "tranches:summary:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Paid)

	v, err = Remember(context.Background(), c, zap.NewNop(), "tranches:summary:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Paid, "second call served from cache")
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Invalidate(context.Background(), "tranches:"))
	v, err = Remember(context.Background(), c, zap.NewNop(), "tranches:summary:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Paid)
}

func TestRemember_CacheDownFallsThrough(t *testing.T) {
	c := &mapCache{data: map[string][]byte{}, failGet: true}
	v, err := Remember(context.Background(), c, zap.NewNop(), "k", time.Minute, func(context.Context) (summary, error) {
		return summary{Paid: 9}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v.Paid)
}

func TestRemember_LoadErrorNotCached(t *testing.T) {
	c := &mapCache{data: map[string][]byte{}}
	_, err := Remember(context.Background(), c, zap.NewNop(), "k", time.Minute, func(context.Context) (summary, error) {
		return summary{}, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.Empty(t, c.data)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Second))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
