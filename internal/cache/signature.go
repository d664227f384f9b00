package cache

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Signature identifies the content of an input file without reading it.
type Signature struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Stat returns the current signature of path.
func Stat(path string) (Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Signature{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Signature{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (s Signature) String() string {
	return fmt.Sprintf("%s@%d:%d", s.Path, s.Size, s.ModTime.UnixNano())
}

// keyFor builds the cache key of a set of input files.
func keyFor(paths []string) (string, error) {
	parts := make([]string, len(paths))
	for i, p := range paths {
		sig, err := Stat(p)
		if err != nil {
			return "", err
		}
		parts[i] = sig.String()
	}
	return strings.Join(parts, "|"), nil
}
