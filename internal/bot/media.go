package bot

import (
	"os"
	"path/filepath"
)

// MediaResolver resolves bouquet image references against a local directory.
type MediaResolver struct {
	dir string
}

// NewMediaResolver creates a resolver rooted at dir.
func NewMediaResolver(dir string) *MediaResolver {
	return &MediaResolver{dir: dir}
}

// Resolve maps a relative image reference to its path on disk. The second
// return is false when the file does not exist, so the dialog can send the
// "image not found" notice instead of a broken photo.
func (r *MediaResolver) Resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	path := filepath.Join(r.dir, filepath.Clean(ref))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
