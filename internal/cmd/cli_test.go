package cmd

import (
	"bytes"
	"context"
)

// PatchCLI returns a context which contains a CLI value with the output streams
// set to buffers. PatchCLI is used by tests to record the output produced by
// CLI commands.
func PatchCLI(ctx context.Context) (context.Context, BufferedStreams) {
	bufs := BufferedStreams{
		Stdin:  new(bytes.Buffer),
		Stdout: new(bytes.Buffer),
		Stderr: new(bytes.Buffer),
	}
	cli := &CLI{
		Stdin:  bufs.Stdin,
		Stdout: bufs.Stdout,
		Stderr: bufs.Stderr,
	}
	return context.WithValue(ctx, ctxKey, cli), bufs
}

type BufferedStreams struct {
	Stdin  *bytes.Buffer
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}
