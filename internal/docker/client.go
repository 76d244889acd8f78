package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"
)

// PingTimeout bounds the daemon check so an absent daemon does not consume
// the command deadline.
const PingTimeout = 2 * time.Second

// NewClient connects to the Docker daemon named by the DOCKER_* environment,
// applying any extra options after the defaults.
func NewClient(ctx context.Context, opts ...client.Opt) (*client.Client, error) {
	opts = append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker daemon at %s not reachable: %w", cli.DaemonHost(), err)
	}

	return cli, nil
}
