package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialization helpers for converting between job summaries and Redis hashes.

// JobSummaryToHash converts a summary into the fields stored in its job hash.
func JobSummaryToHash(s JobSummary) map[string]interface{} {
	return map[string]interface{}{
		"instance_count": s.InstanceCount,
		"cron_schedule":  s.CronSchedule,
	}
}

// HashToJobSummary rebuilds a summary from its role/env/name path and job hash.
// A missing hash is allowed: the path alone identifies the job.
func HashToJobSummary(path string, hash map[string]string) (JobSummary, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return JobSummary{}, fmt.Errorf("job path %q must have 3 segments", path)
	}

	s := JobSummary{Role: parts[0], Environment: parts[1], Name: parts[2]}

	if v := hash["instance_count"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return JobSummary{}, fmt.Errorf("invalid instance_count field: %w", err)
		}
		s.InstanceCount = n
	}
	s.CronSchedule = hash["cron_schedule"]

	return s, nil
}

// SummaryPath returns the role/env/name path a summary is stored under.
func SummaryPath(s JobSummary) string {
	return strings.Join([]string{s.Role, s.Environment, s.Name}, "/")
}
