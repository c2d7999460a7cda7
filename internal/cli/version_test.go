package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `\d+\.\d+\.\d+`, stdout)
	assert.Contains(t, stdout, "revision=")
	assert.Empty(t, stderr)
}
