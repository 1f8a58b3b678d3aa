package lspserver

import (
	"net/url"
	"path/filepath"

	"github.com/sargunv/jvl/internal/protocol"
)

// uriToFilePath converts a file:// document URI to a local filesystem
// path. Non-file URIs (untitled:, git:, and similar virtual schemes some
// editors attach to unsaved buffers) return ok=false — jvl only
// validates real files on disk.
func uriToFilePath(uri protocol.DocumentUri) (string, bool) {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// filePathToURI converts a local filesystem path to a file:// URI.
func filePathToURI(path string) protocol.DocumentUri {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return protocol.DocumentUri(u.String())
}
