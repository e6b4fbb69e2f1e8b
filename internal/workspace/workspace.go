package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

var (
	// ErrPathEscapesStaging indicates a write target outside the staging root.
	ErrPathEscapesStaging = errors.New("path escapes staging directory")

	// ErrNotStaged indicates the staging directory was already finalized or aborted.
	ErrNotStaged = errors.New("staging directory is not active")

	// ErrNoTarget indicates Finalize was called on a staging area without an output.
	ErrNoTarget = errors.New("staging directory has no output to promote to")
)

// Staging is an output directory under construction.
type Staging struct {
	output string
	dir    string
}

// Begin creates a staging directory next to output.
func Begin(output string) (*Staging, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return nil, fmt.Errorf("create output parent: %w", err)
	}

	pattern := fmt.Sprintf("%s.staging-%s-*", filepath.Base(abs), time.Now().Format("20060102-150405"))
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	slog.Debug("Initialized staging directory", slog.String("staging", dir), logfields.Path(abs))
	return &Staging{output: abs, dir: dir}, nil
}

// BeginTemp creates a staging directory under the system temp dir that can only
// be aborted. It backs dry runs.
func BeginTemp() (*Staging, error) {
	dir, err := os.MkdirTemp("", "mdxsite-check-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Dir returns the staging root.
func (s *Staging) Dir() string {
	return s.dir
}

// Output returns the directory Finalize promotes to.
func (s *Staging) Output() string {
	return s.output
}

// Path resolves a slash-separated path (a leading "/" is allowed, as in page
// links) inside the staging root.
func (s *Staging) Path(rel string) (string, error) {
	if s.dir == "" {
		return "", ErrNotStaged
	}
	local := filepath.FromSlash(strings.TrimPrefix(rel, "/"))
	if local == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesStaging, rel)
	}
	return filepath.Join(s.dir, local), nil
}

// WriteFile writes data at rel, creating parent directories.
func (s *Staging) WriteFile(rel string, data []byte) error {
	path, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	// #nosec G306 -- generated site files are world readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// CopyFile copies src byte for byte to rel.
func (s *Staging) CopyFile(src, rel string) (err error) {
	path, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}

	in, err := os.Open(src) // #nosec G304 -- src comes from source discovery
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(path) // #nosec G304 -- path is confined to the staging root
	if err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", rel, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", rel, err)
	}
	return nil
}

// Finalize promotes the staging directory to the output directory.
//
//  1. Carry "." and "_" entries of the current output into staging.
//  2. Move the current output to <output>.prev.
//  3. Rename staging to output; on failure restore the backup.
//  4. Remove the backup.
func (s *Staging) Finalize() error {
	if s.dir == "" {
		return ErrNotStaged
	}
	if s.output == "" {
		return ErrNoTarget
	}

	if err := s.carryOver(); err != nil {
		return err
	}

	prev := s.output + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	hadOutput := false
	if _, err := os.Stat(s.output); err == nil {
		if err := os.Rename(s.output, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
		hadOutput = true
	}

	if err := os.Rename(s.dir, s.output); err != nil {
		if hadOutput {
			if rerr := os.Rename(prev, s.output); rerr != nil {
				slog.Error("Failed to restore previous output", logfields.Path(prev), logfields.Error(rerr))
			}
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	s.dir = ""

	if hadOutput {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Info("Promoted staging directory", logfields.Path(s.output))
	return nil
}

// carryOver copies preserved entries of the current output into staging.
func (s *Staging) carryOver() error {
	entries, err := os.ReadDir(s.output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read existing output: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !Preserved(name) {
			continue
		}
		dst := filepath.Join(s.dir, name)
		if _, err := os.Lstat(dst); err == nil {
			continue
		}
		src := filepath.Join(s.output, name)
		if entry.IsDir() {
			err = os.CopyFS(dst, os.DirFS(src))
		} else if entry.Type().IsRegular() {
			err = s.CopyFile(src, name)
		} else {
			slog.Warn("Not carrying over special file", logfields.Path(src))
			continue
		}
		if err != nil {
			return fmt.Errorf("carry over %s: %w", name, err)
		}
		slog.Debug("Carried over output entry", logfields.Path(name))
	}
	return nil
}

// Preserved reports whether an output entry survives rebuilds.
func Preserved(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Abort removes the staging directory. It is safe to call more than once and
// after Finalize.
func (s *Staging) Abort() {
	if s.dir == "" {
		return
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
		return
	}
	slog.Debug("Removed staging directory after abort", slog.String("staging", dir))
}
