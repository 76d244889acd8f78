package scheduler

import "fmt"

// Redis key pattern helpers. See the package documentation for the layout.

// JobsKey returns the set of every job path on a cluster.
// Pattern: aurora:{cluster}:jobs
func JobsKey(cluster string) string {
	return fmt.Sprintf("aurora:%s:jobs", cluster)
}

// RoleJobsKey returns the set of job paths owned by one role.
// Pattern: aurora:{cluster}:role:{role}:jobs
func RoleJobsKey(cluster, role string) string {
	return fmt.Sprintf("aurora:%s:role:%s:jobs", cluster, role)
}

// JobKeyHash returns the hash holding a job's metadata.
// Pattern: aurora:{cluster}:job:{role}/{env}/{name}
func JobKeyHash(cluster, path string) string {
	return fmt.Sprintf("aurora:%s:job:%s", cluster, path)
}

// TasksKey returns the list of JSON-encoded tasks for a job.
// Pattern: aurora:{cluster}:job:{role}/{env}/{name}:tasks
func TasksKey(cluster, path string) string {
	return fmt.Sprintf("aurora:%s:job:%s:tasks", cluster, path)
}

// OfflineKey holds the refusal message while a cluster's scheduler is offline.
// Pattern: aurora:{cluster}:offline
func OfflineKey(cluster string) string {
	return fmt.Sprintf("aurora:%s:offline", cluster)
}
