// internal/domain/batch/dir.go

package batch

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"tweetmood/internal/domain/pipeline"
)

// Counter receives the line count of each batch file once it has been consumed
type Counter interface {
	Add(n int)
}

// Dir is a stage directory known to exist
type Dir struct {
	path string
}

// OpenDir returns a Dir for an existing directory.
// Existence is a precondition of iteration and is only checked here.
func OpenDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, pipeline.ErrDirMissing)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", path, pipeline.ErrDirMissing)
	}
	return &Dir{path: path}, nil
}

// EnsureDir creates the directory when absent and opens it
func EnsureDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return OpenDir(path)
}

// Path returns the directory path
func (d *Dir) Path() string { return d.path }

// Join returns the path of name inside the directory
func (d *Dir) Join(name string) string { return filepath.Join(d.path, name) }

// Files yields every batch file in name order. The sequence is lazy and can
// be ranged over again; each pass re-reads the directory listing.
func (d *Dir) Files() iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		matches, err := filepath.Glob(filepath.Join(d.path, Pattern))
		if err != nil {
			yield(File{}, err)
			return
		}
		sort.Strings(matches)

		for _, m := range matches {
			f, err := NewFile(m)
			if !yield(f, err) {
				return
			}
		}
	}
}

// Walk yields the same sequence as Files and advances counter by a file's
// line count after the consumer is done with it. counter may be nil.
func (d *Dir) Walk(counter Counter) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		for f, err := range d.Files() {
			if err != nil {
				if !yield(f, err) {
					return
				}
				continue
			}

			n, err := CountLines(f.Path)
			if err != nil {
				if !yield(f, err) {
					return
				}
				continue
			}

			if !yield(f, nil) {
				return
			}
			if counter != nil {
				counter.Add(n)
			}
		}
	}
}

// Lines returns the total line count of all batch files, for sizing progress
func (d *Dir) Lines() (int, error) {
	total := 0
	for f, err := range d.Files() {
		if err != nil {
			continue
		}
		n, err := CountLines(f.Path)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
