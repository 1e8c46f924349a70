package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Subdirectory names under the output root
const (
	PhotosDir   = "photos"
	VideosDir   = "videos"
	AlbumsDir   = "albums"
	MetadataDir = "metadata"
)

// Layout is the output tree rooted at a download directory
type Layout struct {
	root string
}

// NewLayout creates the output tree under root if it does not exist yet
func NewLayout(root string) (*Layout, error) {
	l := &Layout{root: root}
	for _, dir := range []string{l.Photos(), l.Videos(), l.Albums(), l.Metadata()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return l, nil
}

// OpenLayout returns the layout of root without creating anything, for
// read-only use such as Stats
func OpenLayout(root string) *Layout {
	return &Layout{root: root}
}

func (l *Layout) Root() string     { return l.root }
func (l *Layout) Photos() string   { return filepath.Join(l.root, PhotosDir) }
func (l *Layout) Videos() string   { return filepath.Join(l.root, VideosDir) }
func (l *Layout) Albums() string   { return filepath.Join(l.root, AlbumsDir) }
func (l *Layout) Metadata() string { return filepath.Join(l.root, MetadataDir) }

// AlbumDir creates and returns the directory for one album post
func (l *Layout) AlbumDir(postID string) (string, error) {
	dir := filepath.Join(l.Albums(), postID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create album directory: %w", err)
	}
	return dir, nil
}

// WriteFile streams r into path atomically and returns the number of bytes written
func WriteFile(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to write file data: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}

// Stats counts the files and bytes stored in each area of the tree
type Stats struct {
	Photos   int
	Videos   int
	Albums   int
	Metadata int
	Bytes    int64
}

// Stats walks the tree. Albums counts album directories, not their items.
func (l *Layout) Stats() (Stats, error) {
	var s Stats

	entries, err := os.ReadDir(l.Albums())
	if err != nil && !os.IsNotExist(err) {
		return s, err
	}
	for _, e := range entries {
		if e.IsDir() {
			s.Albums++
		}
	}

	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		s.Bytes += info.Size()

		switch filepath.Base(filepath.Dir(path)) {
		case PhotosDir:
			s.Photos++
		case VideosDir:
			s.Videos++
		case MetadataDir:
			s.Metadata++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return s, fmt.Errorf("failed to walk output tree: %w", err)
	}
	return s, nil
}
