// Package cluster holds the registry of clusters a session may talk to.
package cluster

import (
	"fmt"
	"os"

	"github.com/dyluth/aurora-cli/internal/config"
	"github.com/dyluth/aurora-cli/internal/jobkey"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/redis/go-redis/v9"
)

// Source records where a descriptor came from.
type Source string

const (
	SourceConfig Source = "config"
	SourceDocker Source = "docker"
)

// Descriptor identifies a cluster and how to reach its scheduler. Descriptors
// are values and are never modified after the registry is built.
type Descriptor struct {
	Name         string
	RedisURL     string
	SchedulerURL string
	Auth         config.AuthConfig
	Source       Source
}

// RedisOptions parses the descriptor's Redis URL.
func (d Descriptor) RedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(d.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: invalid redis_url: %w", d.Name, err)
	}
	return opts, nil
}

// AuthModule returns the scheduler auth module selected by the descriptor.
func (d Descriptor) AuthModule() scheduler.AuthModule {
	if d.Auth.Mechanism != config.AuthPassword {
		return scheduler.InsecureAuth{}
	}
	envName := d.Auth.PasswordEnv
	return scheduler.PasswordAuth{Lookup: func() (string, error) {
		pw, ok := os.LookupEnv(envName)
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", envName)
		}
		return pw, nil
	}}
}

// Registry is an ordered, read-only set of cluster descriptors. Iteration
// order is the order clusters were added and is stable for the process.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry builds a registry, rejecting empty or duplicate names.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("cluster name cannot be empty")
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate cluster '%s'", d.Name)
		}
		r.order = append(r.order, d.Name)
		r.byName[d.Name] = d
	}
	return r, nil
}

// FromConfig builds a registry from a validated clusters.yml.
func FromConfig(cfg *config.Config) (*Registry, error) {
	descs := make([]Descriptor, 0, len(cfg.Clusters))
	for _, c := range cfg.Clusters {
		descs = append(descs, Descriptor{
			Name:         c.Name,
			RedisURL:     c.RedisURL,
			SchedulerURL: c.SchedulerURL,
			Auth:         c.Auth,
			Source:       SourceConfig,
		})
	}
	return NewRegistry(descs...)
}

// Get looks a cluster up by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Len returns the number of clusters.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns every cluster name in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every descriptor in registry order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Match returns the names of clusters matching a glob, in registry order.
func (r *Registry) Match(pattern string) []string {
	g := jobkey.CompileGlob(pattern)
	var out []string
	for _, name := range r.order {
		if g.Match(name) {
			out = append(out, name)
		}
	}
	return out
}

// Merge returns a new registry with discovered clusters appended. Configured
// clusters win: a discovered cluster with a known name is skipped and reported.
func (r *Registry) Merge(discovered []Descriptor) (*Registry, []string) {
	merged := &Registry{
		order:  append([]string(nil), r.order...),
		byName: make(map[string]Descriptor, len(r.byName)+len(discovered)),
	}
	for k, v := range r.byName {
		merged.byName[k] = v
	}

	var skipped []string
	for _, d := range discovered {
		if _, exists := merged.byName[d.Name]; exists || d.Name == "" {
			skipped = append(skipped, d.Name)
			continue
		}
		merged.order = append(merged.order, d.Name)
		merged.byName[d.Name] = d
	}
	return merged, skipped
}
