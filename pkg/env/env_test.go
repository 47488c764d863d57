package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Setenv("ENV_TEST_KEY", "console")
	assert.Equal(t, "console", Get("ENV_TEST_KEY", "json"))

	t.Setenv("ENV_TEST_KEY", "  console  ")
	assert.Equal(t, "console", Get("ENV_TEST_KEY", "json"))

	t.Setenv("ENV_TEST_KEY", "   ")
	assert.Equal(t, "json", Get("ENV_TEST_KEY", "json"))

	assert.Equal(t, "json", Get("ENV_TEST_MISSING", "json"))
}
