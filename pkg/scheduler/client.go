package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Client is the per-cluster scheduler API. The error return is reserved for
// transport failures; refusals are non-OK envelopes.
type Client interface {
	// ListJobs returns the cluster's job inventory. An empty role means no filter.
	ListJobs(ctx context.Context, role string) (*Response[[]JobSummary], error)
	// GetStatus returns the tasks of one job.
	GetStatus(ctx context.Context, key JobKey) (*Response[[]ScheduledTask], error)
	// Close releases the connection. The client must not be used afterwards.
	Close() error
}

// RedisClient talks to a scheduler that publishes its state into Redis.
// It is safe for concurrent use.
type RedisClient struct {
	rdb     *redis.Client
	cluster string
	session SessionKey
}

var _ Client = (*RedisClient)(nil)

// NewClient connects to the scheduler of one cluster.
// The session key produced by auth is applied to the connection and verified
// with a PING; on failure no connection is left open.
func NewClient(ctx context.Context, redisOpts *redis.Options, cluster string, auth AuthModule) (*RedisClient, error) {
	if cluster == "" {
		return nil, fmt.Errorf("cluster name cannot be empty")
	}
	if redisOpts == nil {
		return nil, fmt.Errorf("redis options are required for cluster %s", cluster)
	}

	session, err := NewSessionKey(auth)
	if err != nil {
		return nil, err
	}

	opts := *redisOpts
	switch session.Mechanism {
	case MechanismUnauthenticated:
	case MechanismPassword:
		opts.Password = session.Data
	default:
		return nil, fmt.Errorf("unsupported auth mechanism %q", session.Mechanism)
	}

	c := &RedisClient{
		rdb:     redis.NewClient(&opts),
		cluster: cluster,
		session: session,
	}

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.rdb.Close()
		return nil, fmt.Errorf("failed to connect to scheduler for cluster %s: %w", cluster, err)
	}

	return c, nil
}

// Cluster returns the name of the cluster this client is bound to.
func (c *RedisClient) Cluster() string {
	return c.cluster
}

// AuthMechanism returns the mechanism of the session key the client
// authenticated with. The key data itself is not exposed.
func (c *RedisClient) AuthMechanism() string {
	return c.session.Mechanism
}

// Close closes the Redis connection. Implements io.Closer.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// ListJobs reads the job inventory, sorted by role/env/name.
func (c *RedisClient) ListJobs(ctx context.Context, role string) (*Response[[]JobSummary], error) {
	msg, offline, err := c.offline(ctx)
	if err != nil {
		return nil, err
	}
	if offline {
		return Fail[[]JobSummary](ResponseError, "%s", msg), nil
	}

	setKey := JobsKey(c.cluster)
	if role != "" {
		setKey = RoleJobsKey(c.cluster, role)
	}

	paths, err := c.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read job inventory: %w", err)
	}
	sort.Strings(paths)

	cmds := make([]*redis.MapStringStringCmd, len(paths))
	if len(paths) > 0 {
		_, err = c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, p := range paths {
				cmds[i] = pipe.HGetAll(ctx, JobKeyHash(c.cluster, p))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read job records: %w", err)
		}
	}

	jobs := make([]JobSummary, 0, len(paths))
	for i, p := range paths {
		summary, err := HashToJobSummary(p, cmds[i].Val())
		if err != nil {
			return Fail[[]JobSummary](ResponseError, "corrupt job record %s: %v", p, err), nil
		}
		jobs = append(jobs, summary)
	}

	return OK(jobs), nil
}

// GetStatus reads the tasks of one job. A job without tasks is reported as an
// invalid request, matching the scheduler's own status query.
func (c *RedisClient) GetStatus(ctx context.Context, key JobKey) (*Response[[]ScheduledTask], error) {
	if key.Cluster != c.cluster {
		return Fail[[]ScheduledTask](ResponseInvalidRequest, "job %s does not belong to cluster %s", key, c.cluster), nil
	}

	msg, offline, err := c.offline(ctx)
	if err != nil {
		return nil, err
	}
	if offline {
		return Fail[[]ScheduledTask](ResponseError, "%s", msg), nil
	}

	raw, err := c.rdb.LRange(ctx, TasksKey(c.cluster, key.Path()), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	if len(raw) == 0 {
		return Fail[[]ScheduledTask](ResponseInvalidRequest, "No tasks found for query: %s", key), nil
	}

	tasks := make([]ScheduledTask, 0, len(raw))
	for _, r := range raw {
		var t ScheduledTask
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			return Fail[[]ScheduledTask](ResponseError, "corrupt task record for %s: %v", key, err), nil
		}
		tasks = append(tasks, t)
	}

	return OK(tasks), nil
}

// offline reports whether the scheduler has marked itself unavailable.
func (c *RedisClient) offline(ctx context.Context) (string, bool, error) {
	msg, err := c.rdb.Get(ctx, OfflineKey(c.cluster)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read scheduler state: %w", err)
	}
	return msg, true, nil
}
