// internal/domain/batch/file.go

package batch

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Pattern matches batch files: a two-character language prefix, an
// underscore, and the .tsv extension. Sidecars never match it.
const Pattern = "??_*.tsv"

// LinesSuffix names the sidecar that maps surviving lines to source lines
const LinesSuffix = ".lines"

// maxLineSize bounds a single record; tweets and their translations are far below it
const maxLineSize = 1 << 20

// File identifies one batch file on disk
type File struct {
	Language string
	TopicID  int
	Name     string
	Path     string
}

// Name returns the batch file name for a (language, topic) pair
func Name(lang string, topicID int) string {
	return fmt.Sprintf("%s_%d.tsv", lang, topicID)
}

// ParseName extracts the language (first two characters) and the topic id
// (all digits of the name) from a batch file name.
func ParseName(name string) (lang string, topicID int, err error) {
	base := filepath.Base(name)
	if len(base) < 3 || base[2] != '_' {
		return "", 0, fmt.Errorf("not a batch file name: %q", base)
	}

	var digits strings.Builder
	for _, r := range base {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", 0, fmt.Errorf("no topic id in batch file name %q", base)
	}

	id, err := strconv.Atoi(digits.String())
	if err != nil {
		return "", 0, fmt.Errorf("topic id in %q: %w", base, err)
	}
	return base[:2], id, nil
}

// NewFile builds a File for a path, parsing its name
func NewFile(path string) (File, error) {
	lang, id, err := ParseName(path)
	if err != nil {
		return File{}, err
	}
	return File{Language: lang, TopicID: id, Name: filepath.Base(path), Path: path}, nil
}

// CountLines counts records in a file without keeping its contents.
// An unterminated last line counts as a record.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	count := 0
	last := byte('\n')
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}

// ForEachLine calls fn for every line of the file, with a zero-based line number.
// The trailing newline is stripped. Returning an error from fn stops the scan.
func ForEachLine(path string, fn func(n int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		if err := fn(n, sc.Text()); err != nil {
			return err
		}
		n++
	}
	return sc.Err()
}

// WriteAtomic writes path through a temporary file in the same directory and
// renames it into place only when fn succeeds. On failure nothing is left behind.
func WriteAtomic(path string, fn func(w *bufio.Writer) error) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	committed = true
	return nil
}

// AppendLines appends lines to path, creating it when absent
func AppendLines(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LinesPath returns the line-map sidecar path of a batch file
func LinesPath(path string) string {
	return path + LinesSuffix
}

// RemoveOutput deletes a stage output file and its .lines sidecar. Missing
// files are not an error.
func RemoveOutput(path string) error {
	var errs []error
	for _, p := range []string{path, LinesPath(path)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
