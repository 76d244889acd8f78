package docker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisURL(t *testing.T) {
	want := "redis://localhost:6379"
	if _, err := os.Stat("/.dockerenv"); err == nil {
		want = "redis://host.docker.internal:6379"
	}
	assert.Equal(t, want, RedisURL(6379))
}

func TestLabelsAreNamespaced(t *testing.T) {
	for _, l := range []string{LabelProject, LabelClusterName, LabelComponent, LabelRedisPort, LabelSchedulerURL} {
		assert.Regexp(t, `^aurora\.`, l)
	}
}
