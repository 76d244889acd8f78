// Package format renders clusters, job keys and task status for the terminal
// and as JSON for scripts.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/aurora-cli/internal/cluster"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// FormatKeys writes one job key per line, in the given order.
// Returns the number of keys written.
func FormatKeys(w io.Writer, keys []scheduler.JobKey) int {
	for _, k := range keys {
		fmt.Fprintln(w, k.String())
	}
	return len(keys)
}

// FormatClusters writes the registry as a table with columns NAME, SOURCE and SCHEDULER.
func FormatClusters(w io.Writer, descs []cluster.Descriptor) int {
	if len(descs) == 0 {
		fmt.Fprintln(w, "No clusters configured")
		return 0
	}

	fmt.Fprintf(w, "%-20s %-8s %s\n", "NAME", "SOURCE", "SCHEDULER")
	fmt.Fprintf(w, "%-20s %-8s %s\n", "--------------------", "--------", "------------------------------")
	for _, d := range descs {
		fmt.Fprintf(w, "%-20s %-8s %s\n", d.Name, d.Source, orDash(d.SchedulerURL))
	}
	return len(descs)
}

// FormatTasks writes the tasks of one job as a table.
// The table includes columns: INSTANCE, STATUS, HOST, TASK and UPDATED.
func FormatTasks(w io.Writer, key scheduler.JobKey, tasks []scheduler.ScheduledTask, now time.Time) int {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks found for job '%s'\n", key)
		return 0
	}

	fmt.Fprintf(w, "Tasks for job '%s':\n\n", key)
	fmt.Fprintf(w, "%-8s %-11s %-20s %-10s %s\n", "INSTANCE", "STATUS", "HOST", "TASK", "UPDATED")
	fmt.Fprintf(w, "%-8s %-11s %-20s %-10s %s\n", "--------", "-----------", "--------------------", "----------", "--------")

	for _, t := range tasks {
		fmt.Fprintf(w, "%-8d %-11s %-20s %-10s %s\n",
			t.InstanceID,
			t.Status,
			formatHost(t.Host),
			formatID(t.TaskID),
			formatTimestamp(lastEventMs(t), now),
		)
	}

	countMsg := "task"
	if len(tasks) != 1 {
		countMsg = "tasks"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(tasks), countMsg)
	return len(tasks)
}

// FormatJSONL writes items as line-delimited JSON, one object per line.
func FormatJSONL[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes v as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatID truncates a task ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return orDash(id)
}

// formatHost truncates long host names to fit the column.
func formatHost(host string) string {
	if len(host) > 20 {
		return host[:17] + "..."
	}
	return orDash(host)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func lastEventMs(t scheduler.ScheduledTask) int64 {
	if len(t.Events) == 0 {
		return 0
	}
	return t.Events[len(t.Events)-1].TimestampMs
}

// formatTimestamp formats a Unix timestamp in milliseconds relative to now,
// e.g. "2m ago".
func formatTimestamp(timestampMs int64, now time.Time) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := now.Sub(time.UnixMilli(timestampMs))
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
