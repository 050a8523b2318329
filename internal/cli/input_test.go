package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, sync bool, script string) string {
	t.Helper()
	opts := autofill.DefaultOptions()
	opts.Clock = clock.NewFake()

	var out bytes.Buffer
	h, err := NewInputHandler(opts, sync, strings.NewReader(script), &out)
	require.NoError(t, err)
	require.NoError(t, h.Start())
	return out.String()
}

func TestInputHandlerSyncSession(t *testing.T) {
	out := runScript(t, true, strings.Join([]string{
		"saga",
		":down",
		":enter",
		":stats",
	}, "\n"))

	assert.Contains(t, out, `[open] query="saga" results=1`)
	assert.Contains(t, out, "44.")
	assert.Contains(t, out, "selected")
	assert.Contains(t, out, "id=44")
	assert.Contains(t, out, `[closed] query="saga" results=1`)
	assert.Contains(t, out, "matcherRuns=1")
}

func TestInputHandlerClick(t *testing.T) {
	out := runScript(t, true, "tailwind\n:click 55\n")

	assert.Contains(t, out, "results=10")
	assert.Contains(t, out, "id=55")
}

// Without sync, text only settles when the input ends.
func TestInputHandlerSettlesAtEOF(t *testing.T) {
	out := runScript(t, false, "red\nredux")

	assert.NotContains(t, out, `query="red"`)
	assert.Contains(t, out, `[open] query="redux" results=10`)
}

func TestInputHandlerIgnoresBadCommands(t *testing.T) {
	out := runScript(t, true, ":click abc\n:click 999\n:warp\n:down\n")

	assert.NotContains(t, out, "[open]")
	assert.NotContains(t, out, "selected")
}

func TestStylesNamePlainWriter(t *testing.T) {
	styles := NewStyles(&bytes.Buffer{})
	assert.Equal(t, "Redux Saga", styles.Name("Redux Saga", "saga", false))
	assert.Equal(t, "Redux Saga", styles.Name("Redux Saga", "", true))
}
