package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Snapshot is the YAML description of a cluster's jobs and tasks.
type Snapshot struct {
	Jobs []SnapshotJob `yaml:"jobs"`
}

// SnapshotJob describes one job. InstanceCount defaults to the number of tasks.
type SnapshotJob struct {
	Role          string         `yaml:"role"`
	Environment   string         `yaml:"environment"`
	Name          string         `yaml:"name"`
	InstanceCount *int           `yaml:"instance_count,omitempty"`
	CronSchedule  string         `yaml:"cron_schedule,omitempty"`
	Tasks         []SnapshotTask `yaml:"tasks,omitempty"`
}

// SnapshotTask describes one task. StartedAgo is how long before publishing
// the task entered its current status.
type SnapshotTask struct {
	TaskID     string        `yaml:"task_id,omitempty"`
	Instance   int           `yaml:"instance"`
	Status     string        `yaml:"status"`
	Host       string        `yaml:"host,omitempty"`
	StartedAgo time.Duration `yaml:"started_ago,omitempty"`
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &snap, nil
}

// Summary converts the job to its published summary.
func (j SnapshotJob) Summary() scheduler.JobSummary {
	count := len(j.Tasks)
	if j.InstanceCount != nil {
		count = *j.InstanceCount
	}
	return scheduler.JobSummary{
		Role:          j.Role,
		Environment:   j.Environment,
		Name:          j.Name,
		InstanceCount: count,
		CronSchedule:  j.CronSchedule,
	}
}

// ScheduledTasks converts the job's tasks, relative to now. Every task gets a
// PENDING event a minute before it entered its status; tasks without an ID
// get a fresh UUID.
func (j SnapshotJob) ScheduledTasks(now time.Time) ([]scheduler.ScheduledTask, error) {
	tasks := make([]scheduler.ScheduledTask, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		status := scheduler.ScheduleStatus(t.Status)
		if status == "" {
			status = scheduler.StatusRunning
		}
		if !knownStatus(status) {
			return nil, fmt.Errorf("job %s/%s/%s instance %d: unknown status %q",
				j.Role, j.Environment, j.Name, t.Instance, t.Status)
		}

		id := t.TaskID
		if id == "" {
			id = uuid.NewString()
		}

		entered := now.Add(-t.StartedAgo)
		events := []scheduler.TaskEvent{
			{TimestampMs: entered.Add(-time.Minute).UnixMilli(), Status: scheduler.StatusPending},
		}
		if status != scheduler.StatusPending {
			events = append(events, scheduler.TaskEvent{TimestampMs: entered.UnixMilli(), Status: status})
		}

		tasks = append(tasks, scheduler.ScheduledTask{
			TaskID:     id,
			InstanceID: t.Instance,
			Status:     status,
			Host:       t.Host,
			Events:     events,
		})
	}
	return tasks, nil
}

func knownStatus(s scheduler.ScheduleStatus) bool {
	switch s {
	case scheduler.StatusPending, scheduler.StatusThrottled, scheduler.StatusAssigned,
		scheduler.StatusStarting, scheduler.StatusRunning, scheduler.StatusFinished,
		scheduler.StatusPreempting, scheduler.StatusRestarting, scheduler.StatusKilling,
		scheduler.StatusFailed, scheduler.StatusKilled, scheduler.StatusLost:
		return true
	}
	return false
}

// Publisher is the part of the scheduler store the seed tool writes to.
type Publisher interface {
	PublishJob(ctx context.Context, s scheduler.JobSummary) error
	PublishTasks(ctx context.Context, s scheduler.JobSummary, tasks []scheduler.ScheduledTask) error
}

// Publish writes every job of the snapshot and returns how many were published.
func Publish(ctx context.Context, p Publisher, snap *Snapshot, now time.Time) (int, error) {
	for i, j := range snap.Jobs {
		summary := j.Summary()
		tasks, err := j.ScheduledTasks(now)
		if err != nil {
			return i, err
		}

		if err := p.PublishJob(ctx, summary); err != nil {
			return i, err
		}
		if len(tasks) > 0 {
			if err := p.PublishTasks(ctx, summary, tasks); err != nil {
				return i, err
			}
		}
		log.Printf("[Seed] Published %s with %d task(s)", scheduler.SummaryPath(summary), len(tasks))
	}
	return len(snap.Jobs), nil
}
