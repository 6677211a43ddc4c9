package logging

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// PatchLogger replaces L with a logger that writes JSON to writer, and
// restores the original logger when the test ends.
func PatchLogger(t testing.TB, writer io.Writer) {
	t.Helper()
	origL := L
	L = &Logger{Logger: zerolog.New(writer).Level(zerolog.InfoLevel)}
	t.Cleanup(func() {
		L = origL
	})
}
