package subcmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vendsim/state"
)

func TestParse(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *state.Config) error { return nil }
	mods := []Mod{
		{Name: "vend", About: "shell", Main: noop},
		{Name: "config", About: "check config", Main: noop},
	}
	m, err := Parse("config", mods)
	require.NoError(t, err)
	assert.Equal(t, "config", m.Name)

	_, err = Parse("", mods)
	assert.EqualError(t, err, "empty command")
	_, err = Parse("vmc", mods)
	assert.EqualError(t, err, "unknown command='vmc'")

	assert.Panics(t, func() { _, _ = Parse("x", []Mod{{}}) })
	assert.Equal(t, "  vend     shell\n  config   check config\n", Usage(mods))
}
