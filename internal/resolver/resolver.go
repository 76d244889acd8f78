// Package resolver turns partial job keys into concrete jobs by combining
// local glob matching with job listings fetched from every candidate cluster.
package resolver

import (
	"context"
	"log/slog"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/cluster"
	"github.com/dyluth/aurora-cli/internal/jobkey"
	"github.com/dyluth/aurora-cli/internal/response"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"golang.org/x/sync/errgroup"
)

// Handles supplies the scheduler client of a cluster.
type Handles interface {
	Get(ctx context.Context, cluster string) (scheduler.Client, error)
}

// Resolver lists and resolves jobs across clusters.
type Resolver struct {
	registry *cluster.Registry
	handles  Handles
	logger   *slog.Logger
	limit    int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency bounds the number of clusters queried at once.
// Zero or less means one goroutine per cluster.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.limit = n
	}
}

// New creates a resolver. A nil logger discards response records.
func New(registry *cluster.Registry, handles Handles, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Resolver{
		registry: registry,
		handles:  handles,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListJobs lists the jobs of every given cluster, optionally narrowed to a
// role, and returns them flattened in cluster order.
//
// The clusters are queried concurrently. The first cluster to fail cancels
// the others and its error is returned; no partial result is ever returned.
// A role containing glob characters is not sent to the scheduler.
func (r *Resolver) ListJobs(ctx context.Context, clusters []string, role string) ([]scheduler.JobKey, error) {
	filter := role
	if jobkey.HasWildcard(role) {
		filter = ""
	}

	perCluster := make([][]scheduler.JobKey, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, name := range clusters {
		g.Go(func() error {
			keys, err := r.listCluster(gctx, name, filter)
			if err != nil {
				return err
			}
			perCluster[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []scheduler.JobKey
	for _, keys := range perCluster {
		out = append(out, keys...)
	}
	return out, nil
}

func (r *Resolver) listCluster(ctx context.Context, name, role string) ([]scheduler.JobKey, error) {
	h, err := r.handles.Get(ctx, name)
	if err != nil {
		return nil, response.Transport(name, "connect", err)
	}

	resp, err := h.ListJobs(ctx, role)
	if err != nil {
		return nil, response.Transport(name, "listJobs", err)
	}

	summaries, err := response.Check(r.logger, name, resp, clierr.ExitNetworkError)
	if err != nil {
		return nil, err
	}

	keys := make([]scheduler.JobKey, 0, len(summaries))
	for _, s := range summaries {
		keys = append(keys, s.Key(name))
	}
	return keys, nil
}

// Resolve returns the jobs a pattern refers to.
//
// A fully bound pattern resolves to its own key without contacting any
// scheduler. Otherwise the candidate clusters are listed and every job whose
// role, environment and name glob-match the pattern is returned, in listing
// order. The result may be empty.
func (r *Resolver) Resolve(ctx context.Context, p jobkey.Pattern) ([]scheduler.JobKey, error) {
	if p.FullyBound() {
		key, err := p.Key()
		if err != nil {
			return nil, err
		}
		return []scheduler.JobKey{key}, nil
	}

	clusters := r.candidates(p.Cluster)
	if len(clusters) == 0 {
		return nil, nil
	}

	jobs, err := r.ListJobs(ctx, clusters, p.Role)
	if err != nil {
		return nil, err
	}

	m := p.Matcher()
	var out []scheduler.JobKey
	for _, k := range jobs {
		if m.Match(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// ResolveString parses raw as a partial key and resolves it.
func (r *Resolver) ResolveString(ctx context.Context, raw string) ([]scheduler.JobKey, error) {
	p, err := jobkey.ParsePartial(raw)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, p)
}

// candidates expands the cluster segment of a pattern.
func (r *Resolver) candidates(clusterGlob string) []string {
	switch {
	case clusterGlob == jobkey.Wildcard:
		return r.registry.Names()
	case jobkey.HasWildcard(clusterGlob):
		return r.registry.Match(clusterGlob)
	default:
		return []string{clusterGlob}
	}
}
