package redisstore_test

import (
	"os"
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/adaptertest"
	"github.com/luno/openclaw/adapters/redisstore"
)

func connectForTesting(t *testing.T) *redis.Client {
	if os.Getenv("OPENCLAW_REDIS_TESTS") == "" {
		t.Skip("set OPENCLAW_REDIS_TESTS to run against a redis container")
	}

	ctx := t.Context()

	redisInstance, err := rediscontainer.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, redisInstance)
	require.NoError(t, err)

	host, err := redisInstance.Host(ctx)
	require.NoError(t, err)

	port, err := redisInstance.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestStore(t *testing.T) {
	client := connectForTesting(t)

	factory := func() openclaw.Store {
		client.FlushDB(t.Context())
		return redisstore.New(client)
	}

	adaptertest.RunStoreTest(t, factory)
}

func TestVersion(t *testing.T) {
	client := connectForTesting(t)
	ctx := t.Context()

	a := redisstore.New(client, redisstore.WithKey("a"))
	b := redisstore.New(client, redisstore.WithKey("b"))

	v, err := a.Version(ctx)
	jtest.RequireNil(t, err)
	require.Equal(t, int64(0), v)

	jtest.RequireNil(t, a.WriteAll(ctx, openclaw.Document{}))
	jtest.RequireNil(t, a.WriteAll(ctx, openclaw.Document{}))

	v, err = a.Version(ctx)
	jtest.RequireNil(t, err)
	require.Equal(t, int64(2), v)

	doc, err := b.ReadAll(ctx)
	jtest.RequireNil(t, err)
	require.Empty(t, doc.Records)
}
