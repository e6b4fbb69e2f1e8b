package docs

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/mdxsite/internal/docs/errors"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

// DocFile is a regular file found under the source root.
type DocFile struct {
	Path         string // Absolute or root-joined path on disk
	RelativePath string // Slash-separated path relative to the source root
	Size         int64
	IsDocument   bool // True for files with the source extension; everything else is an asset
}

// Load reads the file contents.
func (f DocFile) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, f.RelativePath, err)
	}
	return data, nil
}

// Discover walks root and returns every regular file sorted by relative path.
// Files whose extension equals ext (case-insensitive) are documents.
func Discover(root, ext string) ([]DocFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", derrors.ErrSourceNotFound, root)
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceNotDirectory, root)
	}

	var files []DocFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			if !d.IsDir() {
				slog.Debug("Skipping non-regular file", logfields.Path(path))
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, DocFile{
			Path:         path,
			RelativePath: filepath.ToSlash(rel),
			Size:         fi.Size(),
			IsDocument:   strings.EqualFold(filepath.Ext(path), ext),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, root, err)
	}

	slices.SortFunc(files, func(a, b DocFile) int {
		return cmp.Compare(a.RelativePath, b.RelativePath)
	})

	docs := CountDocuments(files)
	slog.Info("Source files discovered",
		logfields.Path(root),
		logfields.Count(len(files)),
		slog.Int("documents", docs),
		slog.Int("assets", len(files)-docs))
	return files, nil
}

// Split separates documents from assets, preserving order.
func Split(files []DocFile) (documents, assets []DocFile) {
	for _, f := range files {
		if f.IsDocument {
			documents = append(documents, f)
		} else {
			assets = append(assets, f)
		}
	}
	return documents, assets
}

// CountDocuments returns how many files are documents.
func CountDocuments(files []DocFile) int {
	n := 0
	for _, f := range files {
		if f.IsDocument {
			n++
		}
	}
	return n
}
