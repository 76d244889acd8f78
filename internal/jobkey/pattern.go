// Package jobkey parses partial, wildcard-bearing job keys of the form
// cluster/role/env/name and matches concrete jobs against them.
package jobkey

import (
	"strings"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// Wildcard is the token that stands for any value of a key segment.
const Wildcard = "*"

// MaxSegments is the number of segments in a complete job key.
const MaxSegments = 4

// Pattern is a job key whose segments may be globs. It always has all four
// segments; ParsePartial fills missing trailing segments with Wildcard.
type Pattern struct {
	Cluster string
	Role    string
	Env     string
	Name    string
}

// ParsePartial splits raw on '/' and pads it to four segments with Wildcard.
// More than four segments is an invalid parameter. Segments are not otherwise
// validated: a segment without glob characters is simply a literal.
func ParsePartial(raw string) (Pattern, error) {
	parts := strings.Split(raw, "/")
	if len(parts) > MaxSegments {
		return Pattern{}, clierr.InvalidParameter("Job key must have no more than %d segments", MaxSegments)
	}
	for len(parts) < MaxSegments {
		parts = append(parts, Wildcard)
	}
	return Pattern{Cluster: parts[0], Role: parts[1], Env: parts[2], Name: parts[3]}, nil
}

// FromKey turns a concrete key back into a (fully bound) pattern.
func FromKey(k scheduler.JobKey) Pattern {
	return Pattern{Cluster: k.Cluster, Role: k.Role, Env: k.Environment, Name: k.Name}
}

// Segments returns the four segments in key order.
func (p Pattern) Segments() [MaxSegments]string {
	return [MaxSegments]string{p.Cluster, p.Role, p.Env, p.Name}
}

// String renders the pattern as cluster/role/env/name.
func (p Pattern) String() string {
	s := p.Segments()
	return strings.Join(s[:], "/")
}

// FullyBound reports whether no segment contains a wildcard, i.e. the pattern
// names exactly one job.
func (p Pattern) FullyBound() bool {
	for _, s := range p.Segments() {
		if HasWildcard(s) {
			return false
		}
	}
	return true
}

// Key converts a fully bound pattern to the job key it denotes. Every
// segment must be non-empty.
func (p Pattern) Key() (scheduler.JobKey, error) {
	if !p.FullyBound() {
		return scheduler.JobKey{}, clierr.InvalidParameter("job key %q contains wildcards", p.String())
	}
	key := scheduler.JobKey{Cluster: p.Cluster, Role: p.Role, Environment: p.Env, Name: p.Name}
	if err := key.Validate(); err != nil {
		return scheduler.JobKey{}, clierr.InvalidParameter("invalid job key %q: %v", p.String(), err)
	}
	return key, nil
}

// Matcher holds compiled globs for the role, env and name segments.
type Matcher struct {
	role, env, name Glob
}

// Matcher compiles the pattern's role, env and name segments.
func (p Pattern) Matcher() Matcher {
	return Matcher{
		role: CompileGlob(p.Role),
		env:  CompileGlob(p.Env),
		name: CompileGlob(p.Name),
	}
}

// Match reports whether the job's role, env and name all match. The cluster
// is not checked: callers narrow clusters before listing.
func (m Matcher) Match(k scheduler.JobKey) bool {
	return m.role.Match(k.Role) && m.env.Match(k.Environment) && m.name.Match(k.Name)
}
