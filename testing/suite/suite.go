package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 300
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

var errNoDocker = errors.New("docker is not available")

// one container serves every test of the binary, docker removes it on expiry.
var (
	setup       sync.Once
	sharedRedis *redis.Client
	setupErr    error
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

// New - an empty redis database for the test. Skips the test without docker.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	setup.Do(func() {
		sharedRedis, setupErr = startRedis(ctx)
	})

	if errors.Is(setupErr, errNoDocker) {
		t.Skipf("skipping redis test: %v", setupErr)
	}
	if setupErr != nil {
		t.Fatalf("could not start redis: %v", setupErr)
	}

	if err := sharedRedis.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if testing.Verbose() {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: sharedRedis,
	}
}

func startRedis(ctx context.Context) (*redis.Client, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoDocker, err)
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %w", errNoDocker, err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("could not start resource: %w", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration)

	// the server in the container might not accept connections yet
	pool.MaxWait = maxWaitDuration

	var client *redis.Client
	if err = pool.Retry(func() error {
		client = redis.NewClient(&redis.Options{
			Addr: resource.GetHostPort(redisPort),
		})
		return client.Ping(ctx).Err()
	}); err != nil {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			return nil, fmt.Errorf("could not purge resource: %w", purgeErr)
		}

		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	return client, nil
}
