package scheduler

import (
	"fmt"
	"strings"
)

// ResponseCode classifies the outcome of a scheduler call.
type ResponseCode int

const (
	ResponseInvalidRequest ResponseCode = iota
	ResponseOK
	ResponseError
	ResponseWarning
	ResponseAuthFailed
	ResponseLockError
)

var responseCodeNames = map[ResponseCode]string{
	ResponseInvalidRequest: "INVALID_REQUEST",
	ResponseOK:             "OK",
	ResponseError:          "ERROR",
	ResponseWarning:        "WARNING",
	ResponseAuthFailed:     "AUTH_FAILED",
	ResponseLockError:      "LOCK_ERROR",
}

// String returns the wire name of the code, e.g. "OK" or "INVALID_REQUEST".
func (c ResponseCode) String() string {
	if name, ok := responseCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(c))
}

// Response is the envelope returned by every scheduler call.
type Response[T any] struct {
	Code    ResponseCode
	Message string
	Result  T
}

// OK builds a successful envelope around result.
func OK[T any](result T) *Response[T] {
	return &Response[T]{Code: ResponseOK, Result: result}
}

// Fail builds a non-OK envelope carrying the scheduler's message.
func Fail[T any](code ResponseCode, format string, a ...any) *Response[T] {
	return &Response[T]{Code: code, Message: fmt.Sprintf(format, a...)}
}

// globChars are the characters that make a key field a pattern rather than a name.
const globChars = "*?["

// JobKey identifies exactly one job.
type JobKey struct {
	Cluster     string `json:"cluster"`
	Role        string `json:"role"`
	Environment string `json:"environment"`
	Name        string `json:"name"`
}

// String renders the key as cluster/role/env/name.
func (k JobKey) String() string {
	return strings.Join([]string{k.Cluster, k.Role, k.Environment, k.Name}, "/")
}

// Path renders the cluster-relative part of the key: role/env/name.
func (k JobKey) Path() string {
	return strings.Join([]string{k.Role, k.Environment, k.Name}, "/")
}

// Validate checks that every field is present and free of glob characters.
func (k JobKey) Validate() error {
	fields := []struct{ name, value string }{
		{"cluster", k.Cluster},
		{"role", k.Role},
		{"environment", k.Environment},
		{"name", k.Name},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("job key %s is empty", f.name)
		}
		if strings.ContainsAny(f.value, globChars) {
			return fmt.Errorf("job key %s %q contains a wildcard", f.name, f.value)
		}
		if strings.Contains(f.value, "/") {
			return fmt.Errorf("job key %s %q contains '/'", f.name, f.value)
		}
	}
	return nil
}

// JobSummary is one entry of a scheduler's job inventory. The scheduler does
// not report its own cluster name; callers attach it.
type JobSummary struct {
	Role          string `json:"role"`
	Environment   string `json:"environment"`
	Name          string `json:"name"`
	InstanceCount int    `json:"instance_count"`
	CronSchedule  string `json:"cron_schedule,omitempty"`
}

// Key qualifies the summary with the cluster it was listed from.
func (s JobSummary) Key(cluster string) JobKey {
	return JobKey{Cluster: cluster, Role: s.Role, Environment: s.Environment, Name: s.Name}
}

// ScheduleStatus is the lifecycle state of a task.
type ScheduleStatus string

const (
	StatusPending    ScheduleStatus = "PENDING"
	StatusThrottled  ScheduleStatus = "THROTTLED"
	StatusAssigned   ScheduleStatus = "ASSIGNED"
	StatusStarting   ScheduleStatus = "STARTING"
	StatusRunning    ScheduleStatus = "RUNNING"
	StatusFinished   ScheduleStatus = "FINISHED"
	StatusPreempting ScheduleStatus = "PREEMPTING"
	StatusRestarting ScheduleStatus = "RESTARTING"
	StatusKilling    ScheduleStatus = "KILLING"
	StatusFailed     ScheduleStatus = "FAILED"
	StatusKilled     ScheduleStatus = "KILLED"
	StatusLost       ScheduleStatus = "LOST"
)

// Active reports whether a task in this state still occupies a slot.
func (s ScheduleStatus) Active() bool {
	switch s {
	case StatusFinished, StatusFailed, StatusKilled, StatusLost:
		return false
	}
	return true
}

// TaskEvent records one state transition of a task.
type TaskEvent struct {
	TimestampMs int64          `json:"timestamp_ms"`
	Status      ScheduleStatus `json:"status"`
	Message     string         `json:"message,omitempty"`
}

// ScheduledTask is the scheduler's view of one task instance.
type ScheduledTask struct {
	TaskID     string         `json:"task_id"`
	InstanceID int            `json:"instance_id"`
	Status     ScheduleStatus `json:"status"`
	Host       string         `json:"host,omitempty"`
	Events     []TaskEvent    `json:"events"`
}
