package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"
	dockerpkg "github.com/dyluth/aurora-cli/internal/docker"
)

// ContainerLister is the part of the Docker client discovery needs.
type ContainerLister interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
}

// Discover finds local clusters advertised by running Redis containers.
// Containers with missing or malformed labels are skipped with a warning.
// Results are sorted by cluster name.
func Discover(ctx context.Context, cli ContainerLister, logger *slog.Logger) ([]Descriptor, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject))
	filter.Add("label", fmt.Sprintf("%s=%s", dockerpkg.LabelComponent, dockerpkg.ComponentRedis))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		Filters: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	seen := make(map[string]bool)
	var descs []Descriptor
	for _, c := range containers {
		if c.State != "running" {
			continue
		}

		name := c.Labels[dockerpkg.LabelClusterName]
		if name == "" {
			logger.Warn("Skipping container without cluster name", "container", c.ID)
			continue
		}

		port, err := nat.ParsePort(c.Labels[dockerpkg.LabelRedisPort])
		if err != nil || port <= 0 {
			logger.Warn("Skipping container with invalid Redis port",
				"container", c.ID, "cluster", name, "port", c.Labels[dockerpkg.LabelRedisPort])
			continue
		}

		if seen[name] {
			logger.Warn("Skipping duplicate cluster container", "container", c.ID, "cluster", name)
			continue
		}
		seen[name] = true

		descs = append(descs, Descriptor{
			Name:         name,
			RedisURL:     dockerpkg.RedisURL(port),
			SchedulerURL: c.Labels[dockerpkg.LabelSchedulerURL],
			Source:       SourceDocker,
		})
	}

	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})

	return descs, nil
}
