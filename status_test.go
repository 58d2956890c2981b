package loom

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Status(t *testing.T) {
	requestScope := NewScope("request")

	configKey := NewKey[string]("config")
	cacheKey := NewKey[string]("cache")
	redisKey := NewKey[string]("redis")
	memcachedKey := NewKey[string]("memcached")
	backends := NewSelectorKey[string]("backends", redisKey, memcachedKey)
	handlerKey := NewKey[string]("handler")

	m, err := From(
		Singleton(configKey, nothing("cfg")),
		Singleton(cacheKey, func(ctx context.Context, deps Deps) (string, error) {
			return "cache@" + At[string](deps, 0), nil
		}, DependsOn(configKey), InScope(requestScope)),
		Transient(redisKey, nothing("r")),
		Transient(memcachedKey, nothing("m")),
		Transient(handlerKey, nothing("h"), DependsOn(cacheKey, backends)),
	)
	require.NoError(t, err)

	expected := "cache - singleton - scope: request - deps: (config) - uninitialized\n" +
		"config - singleton - deps: () - uninitialized\n" +
		"handler - transient - deps: (cache, backends[redis memcached])\n" +
		"memcached - transient - deps: ()\n" +
		"redis - transient - deps: ()"
	assert.Equal(t, expected, m.Status())

	// Resolving the handler settles the singletons beneath it.
	_, err = Get(context.Background(), m, handlerKey)
	require.NoError(t, err)

	expected = "cache - singleton - scope: request - deps: (config) - ready\n" +
		"config - singleton - deps: () - ready\n" +
		"handler - transient - deps: (cache, backends[redis memcached])\n" +
		"memcached - transient - deps: ()\n" +
		"redis - transient - deps: ()"
	assert.Equal(t, expected, m.Status())
}

func Test_Status_FailedSingleton(t *testing.T) {
	broken := NewKey[string]("broken")

	m, err := From(Singleton(broken, func(ctx context.Context, deps Deps) (string, error) {
		return "", fmt.Errorf("induced failure")
	}))
	require.NoError(t, err)

	_, err = Get(context.Background(), m, broken)
	require.Error(t, err)

	assert.Equal(t, "broken - singleton - deps: () - failed: induced failure", m.Status())
}

func Test_Status_EmptyModule(t *testing.T) {
	m, err := From()
	require.NoError(t, err)
	assert.Equal(t, "", m.Status())
}

func Test_Status_ResetAfterDispose(t *testing.T) {
	key := NewKey[string]("svc")
	m, err := From(Singleton(key, nothing("v")))
	require.NoError(t, err)

	_, err = Get(context.Background(), m, key)
	require.NoError(t, err)
	assert.Equal(t, "svc - singleton - deps: () - ready", m.Status())

	require.NoError(t, m.Dispose())
	assert.Equal(t, "svc - singleton - deps: () - uninitialized", m.Status())
}
