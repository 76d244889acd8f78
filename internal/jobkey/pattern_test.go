package jobkey

import (
	"errors"
	"testing"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartial(t *testing.T) {
	tests := []struct {
		raw  string
		want Pattern
	}{
		{"west", Pattern{"west", "*", "*", "*"}},
		{"west/www-data", Pattern{"west", "www-data", "*", "*"}},
		{"west/www-data/prod", Pattern{"west", "www-data", "prod", "*"}},
		{"west/www-data/prod/hello", Pattern{"west", "www-data", "prod", "hello"}},
		{"*/*/prod/hel*", Pattern{"*", "*", "prod", "hel*"}},
		{"", Pattern{"", "*", "*", "*"}},
		{"west//prod", Pattern{"west", "", "prod", "*"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePartial(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePartial_PrefixPreserved(t *testing.T) {
	inputs := [][]string{
		{"a"},
		{"a", "b"},
		{"a", "b", "c"},
		{"a", "b", "c", "d"},
	}
	for _, segs := range inputs {
		raw := segs[0]
		for _, s := range segs[1:] {
			raw += "/" + s
		}
		p, err := ParsePartial(raw)
		require.NoError(t, err)

		got := p.Segments()
		for i := 0; i < MaxSegments; i++ {
			if i < len(segs) {
				assert.Equal(t, segs[i], got[i], raw)
			} else {
				assert.Equal(t, Wildcard, got[i], raw)
			}
		}
	}
}

func TestParsePartial_TooManySegments(t *testing.T) {
	for _, raw := range []string{"a/b/c/d/e", "////", "a/b/c/d/"} {
		_, err := ParsePartial(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, clierr.ErrInvalidParameter))
		assert.Equal(t, clierr.ExitInvalidParameter, clierr.CodeOf(err))
		assert.Contains(t, err.Error(), "no more than 4 segments")
	}
}

func TestPattern_FullyBound(t *testing.T) {
	assert.True(t, Pattern{"west", "www-data", "prod", "hello"}.FullyBound())
	assert.False(t, Pattern{"*", "www-data", "prod", "hello"}.FullyBound())
	assert.False(t, Pattern{"west", "www-data", "prod", "hel*"}.FullyBound())
	assert.False(t, Pattern{"west", "www-data", "pro?", "hello"}.FullyBound())
}

func TestPattern_Key(t *testing.T) {
	t.Run("fully bound", func(t *testing.T) {
		k, err := Pattern{"west", "www-data", "prod", "hello"}.Key()
		require.NoError(t, err)
		assert.Equal(t, scheduler.JobKey{Cluster: "west", Role: "www-data", Environment: "prod", Name: "hello"}, k)
	})

	t.Run("wildcard rejected", func(t *testing.T) {
		_, err := Pattern{"west", "*", "prod", "hello"}.Key()
		assert.True(t, errors.Is(err, clierr.ErrInvalidParameter))
	})

	t.Run("empty segment rejected", func(t *testing.T) {
		for _, p := range []Pattern{
			{"west", "", "prod", "hello"},
			{"west", "www-data", "prod", ""},
			{"", "www-data", "prod", "hello"},
		} {
			_, err := p.Key()
			assert.True(t, errors.Is(err, clierr.ErrInvalidParameter), "pattern %s", p)
		}
	})
}

func TestPattern_RoundTrip(t *testing.T) {
	key := scheduler.JobKey{Cluster: "west", Role: "www-data", Environment: "prod", Name: "hello"}

	p, err := ParsePartial(key.String())
	require.NoError(t, err)
	assert.Equal(t, FromKey(key), p)

	back, err := p.Key()
	require.NoError(t, err)
	assert.Equal(t, key, back)
	assert.Equal(t, key.String(), p.String())
}

func TestMatcher(t *testing.T) {
	m := Pattern{"clusterA", "*", "prod", "*"}.Matcher()

	assert.True(t, m.Match(scheduler.JobKey{Cluster: "clusterA", Role: "web", Environment: "prod", Name: "frontend"}))
	assert.False(t, m.Match(scheduler.JobKey{Cluster: "clusterA", Role: "web", Environment: "staging", Name: "frontend"}))

	m = Pattern{"*", "w?b", "prod", "front*"}.Matcher()
	assert.True(t, m.Match(scheduler.JobKey{Cluster: "x", Role: "web", Environment: "prod", Name: "frontend"}))
	assert.False(t, m.Match(scheduler.JobKey{Cluster: "x", Role: "webb", Environment: "prod", Name: "frontend"}))
}
