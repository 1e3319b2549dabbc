package walker

import (
	"os"
	"path/filepath"
)

// originalsCandidates are the folders a Photos-style library package keeps
// its full-resolution media under, in the order they appeared across library
// format versions.
var originalsCandidates = []string{
	"originals",
	"Masters",
	filepath.Join("resources", "media"),
}

// DiscoverOriginals locates the originals folder inside a library package.
// If root contains one of the known originals folders the first match is
// returned, otherwise root itself: a plain media directory is backed up
// as-is.
func DiscoverOriginals(root string) string {
	for _, candidate := range originalsCandidates {
		path := filepath.Join(root, candidate)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return root
}
