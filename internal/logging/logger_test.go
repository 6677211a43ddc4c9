package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
)

func TestSetLevel(t *testing.T) {
	b := &bytes.Buffer{}
	PatchLogger(t, b)

	Debugf("hidden %d", 1)
	assert.Equal(t, b.String(), "")

	assert.NilError(t, SetLevel("debug"))
	assert.Equal(t, L.GetLevel(), zerolog.DebugLevel)

	Debugf("shown %d", 2)
	entries := decodeEntries(t, b)
	assert.Equal(t, len(entries), 1)
	assert.Equal(t, entries[0]["message"], "shown 2")

	assert.NilError(t, SetLevel(""))
	assert.Equal(t, L.GetLevel(), zerolog.InfoLevel)

	err := SetLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestConsoleFormatLevel(t *testing.T) {
	format := consoleFormatLevel(true)
	assert.Equal(t, format("info"), "INFO ")
	assert.Equal(t, format("error"), "ERROR")
	assert.Equal(t, format("nonsense"), "?????")

	colored := consoleFormatLevel(false)
	assert.Equal(t, colored("warn"), "\x1b[31mWARN \x1b[0m")
}
