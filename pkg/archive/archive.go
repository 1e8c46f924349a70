// Package archive bundles the output tree into a ZIP file placed beside it.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/logger"
	"igsaved/pkg/storage"
)

const (
	// BackupName is the full backup written beside the output root
	BackupName = "instagram_saved_backup.zip"
	// MetadataName is the metadata-only archive written beside the output root
	MetadataName = "instagram_metadata.zip"
)

// Archiver builds archives of an output root
type Archiver struct {
	logger logger.Logger
}

// New creates an Archiver
func New(log logger.Logger) *Archiver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Archiver{logger: log.WithField("component", "archive")}
}

// CreateBackup zips every regular file below root into BackupName in the
// root's parent directory. Entry names are relative to that parent, so they
// start with the root's own name. An existing archive is replaced.
func (a *Archiver) CreateBackup(root string) (string, error) {
	return a.create(root, BackupName, func(string, fs.DirEntry) bool { return true })
}

// CreateMetadataOnly zips only the JSON files of root/metadata into
// MetadataName in the root's parent directory.
func (a *Archiver) CreateMetadataOnly(root string) (string, error) {
	return a.create(root, MetadataName, func(path string, d fs.DirEntry) bool {
		return strings.HasPrefix(path, storage.MetadataDir+"/") &&
			strings.EqualFold(filepath.Ext(d.Name()), ".json")
	})
}

func (a *Archiver) create(root, name string, include func(string, fs.DirEntry) bool) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", apperrors.Archive("failed to resolve output root", err)
	}
	parent := filepath.Dir(root)
	dest := filepath.Join(parent, name)

	a.logger.InfoWithFields("creating archive", map[string]interface{}{
		"root":    root,
		"archive": dest,
	})

	tmp, err := os.CreateTemp(parent, "."+name+".*.tmp")
	if err != nil {
		return "", apperrors.Archive("failed to create archive", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	entries, err := a.write(tmp, root, parent, include)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", apperrors.Archive("failed to write archive", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return "", apperrors.Archive("failed to replace archive", err)
	}

	fields := map[string]interface{}{"archive": dest, "entries": entries}
	if info, err := os.Stat(dest); err == nil {
		fields["size"] = FormatSize(info.Size())
	}
	a.logger.InfoWithFields("archive created", fields)
	return dest, nil
}

func (a *Archiver) write(w io.Writer, root, parent string, include func(string, fs.DirEntry) bool) (int, error) {
	zw := zip.NewWriter(w)
	entries := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		inRoot, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !include(filepath.ToSlash(inRoot), d) {
			return nil
		}

		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		entries++
		a.logger.DebugWithFields("added to archive", map[string]interface{}{"entry": rel})
		return nil
	})
	if err != nil {
		zw.Close()
		return entries, err
	}
	return entries, zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// FormatSize renders a byte count as B, KB, MB, GB or TB with two decimals
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f TB", value)
}
