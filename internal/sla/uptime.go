// Package sla computes job uptime metrics from a job's task list.
package sla

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// JobUptime maps each active instance of a job to how long it has been running.
type JobUptime struct {
	uptimes map[int]time.Duration
	sorted  []time.Duration // non-decreasing
	active  int
}

// NewJobUptime measures every active task from its first RUNNING event to now,
// truncated to whole seconds. Inactive tasks and tasks that never ran are
// ignored. If two tasks share an instance ID the later one wins.
func NewJobUptime(tasks []scheduler.ScheduledTask, now time.Time) *JobUptime {
	v := &JobUptime{uptimes: make(map[int]time.Duration)}
	for _, task := range tasks {
		if !task.Status.Active() {
			continue
		}
		v.active++
		for _, ev := range task.Events {
			if ev.Status == scheduler.StatusRunning {
				secs := math.Floor(now.Sub(time.UnixMilli(ev.TimestampMs)).Seconds())
				v.uptimes[task.InstanceID] = time.Duration(secs) * time.Second
				break
			}
		}
	}

	v.sorted = make([]time.Duration, 0, len(v.uptimes))
	for _, u := range v.uptimes {
		v.sorted = append(v.sorted, u)
	}
	sort.Slice(v.sorted, func(i, j int) bool { return v.sorted[i] < v.sorted[j] })
	return v
}

// TotalTasks returns the number of running instances.
func (v *JobUptime) TotalTasks() int {
	return len(v.uptimes)
}

// ActiveTasks returns the number of active tasks, running or not.
func (v *JobUptime) ActiveTasks() int {
	return v.active
}

// InstanceIDs returns the running instance IDs in ascending order.
func (v *JobUptime) InstanceIDs() []int {
	ids := make([]int, 0, len(v.uptimes))
	for id := range v.uptimes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Instance returns the uptime of one instance.
func (v *JobUptime) Instance(id int) (time.Duration, bool) {
	u, ok := v.uptimes[id]
	return u, ok
}

// TaskUpCount returns the percentage of tasks that have been up for at least
// duration. A totalTasks of zero means the number of running instances.
func (v *JobUptime) TaskUpCount(duration time.Duration, totalTasks int) float64 {
	total := totalTasks
	if total == 0 {
		total = len(v.sorted)
	}
	if total == 0 {
		return 0
	}

	above := 0
	for _, u := range v.sorted {
		if u >= duration {
			above++
		}
	}
	return 100.0 * float64(above) / float64(total)
}

// JobUptime returns the uptime that percentile per cent of instances have
// reached. Percentile must be within (0, 100).
func (v *JobUptime) JobUptime(percentile float64) (time.Duration, error) {
	if percentile <= 0 || percentile >= 100 {
		return 0, fmt.Errorf("percentile must be within (0, 100), got %v instead", percentile)
	}

	total := len(v.sorted)
	value := int(math.Floor(percentile / 100.0 * float64(total)))
	index := total - value - 1
	if index < 0 || index >= total {
		return 0, nil
	}
	return v.sorted[index], nil
}

// WaitTimeToSLA approximates how long until percentile per cent of tasks
// have been up for duration. It returns false when the SLA cannot be reached
// by waiting, e.g. because too few instances are running.
func (v *JobUptime) WaitTimeToSLA(percentile float64, duration time.Duration, totalTasks int) (time.Duration, bool) {
	if v.TaskUpCount(duration, totalTasks) >= percentile {
		return 0, true
	}

	elements := len(v.sorted)
	total := totalTasks
	if total == 0 {
		total = elements
	}
	target := int(math.Ceil(float64(total) * percentile / 100.0))
	index := elements - target
	if index < 0 || index >= elements {
		return 0, false
	}
	return duration - v.sorted[index], true
}
