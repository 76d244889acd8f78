//go:build integration

package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway Redis container and returns its URL.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisClient_AgainstRealRedis(t *testing.T) {
	ctx := context.Background()
	redisURL := setupRedis(t)

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client, err := NewClient(ctx, opts, "integration", nil)
	require.NoError(t, err)
	defer client.Close()

	job := JobSummary{Role: "web", Environment: "prod", Name: "frontend", InstanceCount: 1}
	require.NoError(t, client.PublishJob(ctx, job))
	require.NoError(t, client.PublishTasks(ctx, job, []ScheduledTask{
		{TaskID: "t0", InstanceID: 0, Status: StatusRunning},
	}))

	list, err := client.ListJobs(ctx, "web")
	require.NoError(t, err)
	require.Equal(t, ResponseOK, list.Code)
	assert.Equal(t, []JobSummary{job}, list.Result)

	status, err := client.GetStatus(ctx, job.Key("integration"))
	require.NoError(t, err)
	require.Equal(t, ResponseOK, status.Code)
	assert.Equal(t, "t0", status.Result[0].TaskID)
}
