package commands

import (
	"testing"
	"time"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSLAJobUptime(t *testing.T) {
	west := newSeededCluster(t, "west")
	west.addJob(t, "web", "prod", "frontend",
		runningTask("t-0", 0, 2*time.Hour),
		runningTask("t-1", 1, 3*time.Hour),
		runningTask("t-2", 2, 10*time.Minute))
	cfg := writeConfig(t, west)

	t.Run("reports each percentile", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-job-uptime", "west/web/prod/frontend",
			"--percentiles", "50,99")
		require.NoError(t, err)
		assert.Regexp(t, `west/web/prod/frontend 50 percentile\t- 7\d{3} seconds\n`, out)
		assert.Regexp(t, `west/web/prod/frontend 99 percentile\t- 6\d{2} seconds\n`, out)
	})

	t.Run("per instance uptime", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-job-uptime", "west/web/prod/frontend",
			"--percentiles", "50", "--instances")
		require.NoError(t, err)
		assert.Regexp(t, `west/web/prod/frontend instance 0\t- 7\d{3} seconds\n`+
			`west/web/prod/frontend instance 1\t- 10\d{3} seconds\n`+
			`west/web/prod/frontend instance 2\t- 60\d seconds\n$`, out)
	})

	t.Run("rejects out of range percentile", func(t *testing.T) {
		_, errOut, err := executeCommand(t, "--config", cfg, "sla", "get-job-uptime", "west/web/prod/frontend",
			"--percentiles", "150")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitInvalidParameter, clierr.CodeOf(err))
		assert.Contains(t, errOut, "percentile must be within (0, 100)")
	})
}

func TestSLATaskUpCount(t *testing.T) {
	west := newSeededCluster(t, "west")
	west.addJob(t, "web", "prod", "frontend",
		runningTask("t-0", 0, 2*time.Hour),
		runningTask("t-1", 1, 3*time.Hour),
		runningTask("t-2", 2, 10*time.Minute),
		runningTask("t-3", 3, 5*time.Minute))
	west.addJob(t, "web", "prod", "backend")
	cfg := writeConfig(t, west)

	t.Run("percentage up", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-task-up-count", "west/web/prod/frontend",
			"--duration", "1h")
		require.NoError(t, err)
		assert.Equal(t, "west/web/prod/frontend 1h0m0s\t- 50.00%\n", out)
	})

	t.Run("key must name one job", func(t *testing.T) {
		_, _, err := executeCommand(t, "--config", cfg, "sla", "get-task-up-count", "west/web/prod")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitInvalidParameter, clierr.CodeOf(err))
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, _, err := executeCommand(t, "--config", cfg, "sla", "get-task-up-count", "west/web/prod/frontend",
			"--duration", "0s")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitInvalidParameter, clierr.CodeOf(err))
	})
}

func TestSLAWaitTime(t *testing.T) {
	west := newSeededCluster(t, "west")
	west.addJob(t, "web", "prod", "frontend",
		runningTask("t-0", 0, 2*time.Hour),
		runningTask("t-1", 1, 3*time.Hour),
		runningTask("t-2", 2, 10*time.Minute),
		runningTask("t-3", 3, 5*time.Minute))
	west.addJob(t, "web", "prod", "scaling",
		runningTask("s-0", 0, 2*time.Hour),
		runningTask("s-1", 1, 3*time.Hour),
		pendingTask("s-2", 2),
		pendingTask("s-3", 3))
	cfg := writeConfig(t, west)

	t.Run("already met", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-wait-time", "west/web/prod/frontend",
			"--percentile", "50", "--duration", "1h")
		require.NoError(t, err)
		assert.Equal(t, "west/web/prod/frontend 50% up for 1h0m0s\t- 0 seconds\n", out)
	})

	t.Run("reachable by waiting", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-wait-time", "west/web/prod/frontend",
			"--percentile", "75", "--duration", "1h")
		require.NoError(t, err)
		assert.Regexp(t, `west/web/prod/frontend 75% up for 1h0m0s\t- (2999|3000) seconds\n`, out)
	})

	t.Run("pending instances make it infeasible", func(t *testing.T) {
		out, _, err := executeCommand(t, "--config", cfg, "sla", "get-wait-time", "west/web/prod/scaling",
			"--percentile", "90", "--duration", "1h")
		require.NoError(t, err)
		assert.Equal(t, "west/web/prod/scaling 90% up for 1h0m0s\t- infeasible, 2 of 4 instances running\n", out)
	})

	t.Run("rejects out of range percentile", func(t *testing.T) {
		_, _, err := executeCommand(t, "--config", cfg, "sla", "get-wait-time", "west/web/prod/frontend",
			"--percentile", "100")
		require.Error(t, err)
		assert.Equal(t, clierr.ExitInvalidParameter, clierr.CodeOf(err))
	})
}

func pendingTask(id string, instance int) scheduler.ScheduledTask {
	return scheduler.ScheduledTask{
		TaskID:     id,
		InstanceID: instance,
		Status:     scheduler.StatusPending,
		Events: []scheduler.TaskEvent{
			{TimestampMs: time.Now().UnixMilli(), Status: scheduler.StatusPending},
		},
	}
}
