package commands

import (
	"context"
	"log/slog"

	"github.com/dyluth/aurora-cli/internal/apicache"
	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/cluster"
	"github.com/dyluth/aurora-cli/internal/config"
	dockerpkg "github.com/dyluth/aurora-cli/internal/docker"
	"github.com/dyluth/aurora-cli/internal/observability"
	"github.com/dyluth/aurora-cli/internal/printer"
	"github.com/dyluth/aurora-cli/internal/resolver"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// session holds the collaborators of one command invocation.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	id       string
	logger   *slog.Logger
	config   *config.Config
	registry *cluster.Registry
	metrics  *observability.Metrics
	handles  *apicache.Cache
	resolver *resolver.Resolver
}

// newSession loads configuration and wires the resolver for cmd.
// The caller must call close.
func newSession(cmd *cobra.Command) (*session, error) {
	s := &session{id: uuid.NewString()}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("session", s.id)

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.ErrorWithContext(
			clierr.ExitInvalidConfiguration,
			"cannot load cluster configuration",
			err.Error(),
			map[string]string{"Config": path},
			[]string{
				"Fix the file so it declares version \"1.0\" and at least one cluster",
				"Point --config or AURORA_CONFIG at another clusters.yml",
			},
		)
	}
	cfg.ApplyEnv()
	if discoverDocker {
		cfg.Discovery.Docker = true
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	s.config = cfg

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	s.ctx, s.cancel = context.WithTimeout(parent, cfg.Timeout)

	s.registry, err = cluster.FromConfig(cfg)
	if err != nil {
		s.cancel()
		return nil, printer.Fail(clierr.Wrap(clierr.ExitInvalidConfiguration, err, "invalid cluster registry"))
	}

	if cfg.Discovery.Docker {
		s.registry = s.discover(s.registry)
	}

	if s.registry.Len() == 0 {
		s.cancel()
		return nil, printer.Error(
			clierr.ExitInvalidConfiguration,
			"no clusters available",
			"clusters.yml declares no clusters and Docker discovery found none.",
			[]string{"Add a cluster to clusters.yml", "Start a local cluster container"},
		)
	}

	if metricsTextfile != "" {
		s.metrics, err = observability.NewMetrics()
		if err != nil {
			s.cancel()
			return nil, printer.Fail(clierr.Wrap(clierr.ExitCommandFailure, err, "failed to set up metrics"))
		}
	}

	s.handles = apicache.New(s.registry, newHandleFactory(s.logger, s.metrics))
	s.resolver = resolver.New(s.registry, s.handles, s.logger)

	s.logger.Debug("Session started", "config", path, "clusters", s.registry.Len(), "timeout", cfg.Timeout)
	return s, nil
}

// discover merges clusters advertised by Docker containers into reg.
// Discovery problems are warnings: configured clusters remain usable.
func (s *session) discover(reg *cluster.Registry) *cluster.Registry {
	cli, err := dockerpkg.NewClient(s.ctx)
	if err != nil {
		printer.Warning("Docker discovery skipped: %v\n", err)
		return reg
	}
	defer cli.Close()

	found, err := cluster.Discover(s.ctx, cli, s.logger)
	if err != nil {
		printer.Warning("Docker discovery skipped: %v\n", err)
		return reg
	}

	merged, skipped := reg.Merge(found)
	for _, name := range skipped {
		s.logger.Warn("Discovered cluster shadowed by configuration", "cluster", name)
	}
	return merged
}

// close releases every scheduler handle and writes metrics, if requested.
func (s *session) close() {
	defer s.cancel()

	if err := s.handles.Close(); err != nil {
		s.logger.Warn("Failed to close scheduler handles", "error", err)
	}
	if err := s.metrics.WriteTextfile(metricsTextfile); err != nil {
		printer.Warning("%v\n", err)
	}
	if err := s.metrics.Shutdown(context.Background()); err != nil {
		s.logger.Warn("Failed to stop metrics", "error", err)
	}
}

// newHandleFactory connects to a cluster's scheduler store, instrumenting the
// client when metrics are enabled.
func newHandleFactory(logger *slog.Logger, m *observability.Metrics) apicache.Factory {
	return func(ctx context.Context, desc cluster.Descriptor) (scheduler.Client, error) {
		opts, err := desc.RedisOptions()
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitInvalidConfiguration, err, "cluster %s", desc.Name)
		}
		client, err := scheduler.NewClient(ctx, opts, desc.Name, desc.AuthModule())
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to scheduler", "cluster", desc.Name, "auth", client.AuthMechanism())
		return observability.Instrument(client, desc.Name, m), nil
	}
}
