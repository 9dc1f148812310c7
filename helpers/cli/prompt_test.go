package cli

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/alive/v2"
)

func TestReadLoop(t *testing.T) {
	t.Parallel()

	a := alive.NewAlive()
	lines := make([]string, 0)
	input := "list\n  add 1 2 \n\nquit\nafter quit\n"
	err := ReadLoop(a, strings.NewReader(input), func(line string) {
		lines = append(lines, line)
		if line == "quit" {
			a.Stop()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "add 1 2", "", "quit"}, lines)
	assert.False(t, a.IsRunning())
}

func TestReadLoopError(t *testing.T) {
	t.Parallel()

	a := alive.NewAlive()
	lines := make([]string, 0)
	r := iotest.TimeoutReader(strings.NewReader("list\ncards\n"))
	err := ReadLoop(a, r, func(line string) { lines = append(lines, line) })
	require.Error(t, err)
	assert.Equal(t, iotest.ErrTimeout, errors.Cause(err))
	assert.Contains(t, err.Error(), "read input")
	assert.True(t, a.IsRunning())
}
