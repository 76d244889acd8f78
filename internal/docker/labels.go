package docker

import (
	"fmt"
	"os"
)

// Label keys advertised by containers that host a local cluster's scheduler state.
const (
	LabelProject      = "aurora.project"
	LabelClusterName  = "aurora.cluster.name"
	LabelComponent    = "aurora.component"
	LabelRedisPort    = "aurora.cluster.redis_port"
	LabelSchedulerURL = "aurora.cluster.scheduler_url"
)

// ComponentRedis marks the container that holds a cluster's Redis store.
const ComponentRedis = "redis"

// RedisHost returns the hostname under which published container ports are reachable.
// Inside a container that is host.docker.internal, otherwise localhost.
func RedisHost() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "host.docker.internal"
	}
	return "localhost"
}

// RedisURL constructs the Redis URL for a published port.
func RedisURL(port int) string {
	return fmt.Sprintf("redis://%s:%d", RedisHost(), port)
}
