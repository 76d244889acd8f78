package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// The publishing half of the transport. Schedulers (and the seed tool) use it
// to expose their state to clients.

// PublishJob adds a job to the cluster inventory, or refreshes its metadata.
func (c *RedisClient) PublishJob(ctx context.Context, s JobSummary) error {
	if err := validateSummary(s); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	path := SummaryPath(s)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, JobsKey(c.cluster), path)
		pipe.SAdd(ctx, RoleJobsKey(c.cluster, s.Role), path)
		pipe.HSet(ctx, JobKeyHash(c.cluster, path), JobSummaryToHash(s))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", path, err)
	}
	return nil
}

// PublishTasks replaces the task list of a job.
func (c *RedisClient) PublishTasks(ctx context.Context, s JobSummary, tasks []ScheduledTask) error {
	if err := validateSummary(s); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	encoded := make([]interface{}, 0, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal task %s: %w", t.TaskID, err)
		}
		encoded = append(encoded, string(data))
	}

	key := TasksKey(c.cluster, SummaryPath(s))
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(encoded) > 0 {
			pipe.RPush(ctx, key, encoded...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish tasks for %s: %w", SummaryPath(s), err)
	}
	return nil
}

// RemoveJob drops a job and its tasks from the inventory.
func (c *RedisClient) RemoveJob(ctx context.Context, s JobSummary) error {
	path := SummaryPath(s)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, JobsKey(c.cluster), path)
		pipe.SRem(ctx, RoleJobsKey(c.cluster, s.Role), path)
		pipe.Del(ctx, JobKeyHash(c.cluster, path), TasksKey(c.cluster, path))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove job %s: %w", path, err)
	}
	return nil
}

// MarkOffline makes every subsequent call answer ERROR with message.
func (c *RedisClient) MarkOffline(ctx context.Context, message string) error {
	if message == "" {
		message = "scheduler is offline"
	}
	if err := c.rdb.Set(ctx, OfflineKey(c.cluster), message, 0).Err(); err != nil {
		return fmt.Errorf("failed to mark cluster %s offline: %w", c.cluster, err)
	}
	return nil
}

// MarkOnline clears a previous MarkOffline.
func (c *RedisClient) MarkOnline(ctx context.Context) error {
	if err := c.rdb.Del(ctx, OfflineKey(c.cluster)).Err(); err != nil {
		return fmt.Errorf("failed to mark cluster %s online: %w", c.cluster, err)
	}
	return nil
}

func validateSummary(s JobSummary) error {
	for name, v := range map[string]string{"role": s.Role, "environment": s.Environment, "name": s.Name} {
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
		if strings.ContainsAny(v, "/"+globChars) {
			return fmt.Errorf("%s %q contains '/' or a wildcard", name, v)
		}
	}
	if s.InstanceCount < 0 {
		return fmt.Errorf("instance_count must be >= 0")
	}
	return nil
}
