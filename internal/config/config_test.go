package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvIntDefault(t *testing.T) {
	assert.Equal(t, 20, EnvIntDefault("TEST_POOL_SIZE", 20))

	t.Setenv("TEST_POOL_SIZE", "35")
	assert.Equal(t, 35, EnvIntDefault("TEST_POOL_SIZE", 20))

	t.Setenv("TEST_POOL_SIZE", "not-a-number")
	assert.Equal(t, 20, EnvIntDefault("TEST_POOL_SIZE", 20))
}

func TestEnvDurationDefault(t *testing.T) {
	assert.Equal(t, time.Hour, EnvDurationDefault("TEST_TTL", time.Hour))

	t.Setenv("TEST_TTL", "90m")
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("TEST_TTL", time.Hour))

	t.Setenv("TEST_TTL", "soon")
	assert.Equal(t, time.Hour, EnvDurationDefault("TEST_TTL", time.Hour))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a"}, CSV("a"))
	assert.Equal(t, []string{"a", "b"}, CSV("a, b,"))
}
