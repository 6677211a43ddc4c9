package server

import (
	"embed"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFiles embed.FS

const staticFilePathPrefix = "static"

// StaticFileSystem serves the files under the static directory of base. It
// implements static.ServeFileSystem.
type StaticFileSystem struct {
	base http.FileSystem
}

func (sfs StaticFileSystem) Open(name string) (http.File, error) {
	return sfs.base.Open(path.Join(staticFilePathPrefix, name))
}

// Exists reports whether filepath, with prefix removed, names a regular file.
// Directories are reported as missing so that their contents are never
// listed.
func (sfs StaticFileSystem) Exists(prefix string, filepath string) bool {
	p := strings.TrimPrefix(filepath, prefix)
	if len(p) == len(filepath) {
		return false
	}

	f, err := sfs.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	stat, err := f.Stat()
	return err == nil && !stat.IsDir()
}
