package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/aurora-cli/internal/printer"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag variable to its default between executions.
func resetFlags() {
	configPath = ""
	discoverDocker = false
	verbose = false
	timeout = 0
	metricsTextfile = ""
	clusterListJSON = false
	jobListJSON = false
	jobStatusJSON = false
	slaPercentiles = []float64{50, 75, 90, 95, 99}
	slaInstances = false
	slaDuration = time.Hour
	slaWaitPercentile = 95
	slaWaitDuration = time.Hour
}

// executeCommand runs the CLI with args and returns what it printed.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("AURORA_TIMEOUT", "")
	t.Setenv("AURORA_DISCOVER_DOCKER", "")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	restore := printer.SetOutput(&out, &errOut)
	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() {
		restore()
		color.NoColor = prevNoColor
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	if args == nil {
		// nil would make cobra fall back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), errOut.String(), err
}

// seededCluster is a scheduler store backed by miniredis.
type seededCluster struct {
	name   string
	mr     *miniredis.Miniredis
	client *scheduler.RedisClient
}

func newSeededCluster(t *testing.T, name string) *seededCluster {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := scheduler.NewClient(context.Background(), &redis.Options{Addr: mr.Addr()}, name, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return &seededCluster{name: name, mr: mr, client: client}
}

func (c *seededCluster) addJob(t *testing.T, role, env, name string, tasks ...scheduler.ScheduledTask) {
	t.Helper()
	ctx := context.Background()
	s := scheduler.JobSummary{Role: role, Environment: env, Name: name, InstanceCount: len(tasks)}
	require.NoError(t, c.client.PublishJob(ctx, s))
	if len(tasks) > 0 {
		require.NoError(t, c.client.PublishTasks(ctx, s, tasks))
	}
}

// writeConfig writes a clusters.yml listing the given clusters in order.
func writeConfig(t *testing.T, clusters ...*seededCluster) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("version: \"1.0\"\nclusters:\n")
	for _, c := range clusters {
		fmt.Fprintf(&buf, "  - name: %s\n    redis_url: redis://%s\n    scheduler_url: http://%s.example.com:8081\n",
			c.name, c.mr.Addr(), c.name)
	}

	path := filepath.Join(t.TempDir(), "clusters.yml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func runningTask(id string, instance int, startedAgo time.Duration) scheduler.ScheduledTask {
	started := time.Now().Add(-startedAgo)
	return scheduler.ScheduledTask{
		TaskID:     id,
		InstanceID: instance,
		Status:     scheduler.StatusRunning,
		Host:       fmt.Sprintf("node-%d", instance),
		Events: []scheduler.TaskEvent{
			{TimestampMs: started.Add(-time.Minute).UnixMilli(), Status: scheduler.StatusPending},
			{TimestampMs: started.UnixMilli(), Status: scheduler.StatusRunning},
		},
	}
}
