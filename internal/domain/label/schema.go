// internal/domain/label/schema.go

package label

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SchemaFileName is the sidecar written next to score files.
// It does not match the batch file pattern.
const SchemaFileName = "labels.schema"

const schemaHeaderPrefix = "# schema: "

// Schema is a named, ordered label set. Its canonical order (alphabetical)
// is the column order of every score file written with it.
type Schema struct {
	name   string
	labels []string
	index  map[string]int
}

// New creates a schema. Labels are sorted into canonical order once, here.
func New(name string, labels []string) (Schema, error) {
	if name == "" {
		return Schema{}, errors.New("schema name is required")
	}
	if len(labels) == 0 {
		return Schema{}, fmt.Errorf("schema %q has no labels", name)
	}

	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	for i, l := range sorted {
		if strings.TrimSpace(l) == "" || strings.ContainsAny(l, "\t\n") {
			return Schema{}, fmt.Errorf("schema %q: invalid label %q", name, l)
		}
		if _, dup := index[l]; dup {
			return Schema{}, fmt.Errorf("schema %q: duplicate label %q", name, l)
		}
		index[l] = i
	}

	return Schema{name: name, labels: sorted, index: index}, nil
}

// Name returns the schema name
func (s Schema) Name() string { return s.name }

// Len returns the number of labels (score-row width)
func (s Schema) Len() int { return len(s.labels) }

// Labels returns the labels in canonical order
func (s Schema) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Label returns the label of column i
func (s Schema) Label(i int) string { return s.labels[i] }

// Index returns the column of a label
func (s Schema) Index(label string) (int, bool) {
	i, ok := s.index[label]
	return i, ok
}

// Equal reports whether two schemas describe the same columns
func (s Schema) Equal(o Schema) bool {
	if s.name != o.name || len(s.labels) != len(o.labels) {
		return false
	}
	for i := range s.labels {
		if s.labels[i] != o.labels[i] {
			return false
		}
	}
	return true
}

// WriteTo writes the sidecar representation of the schema
func (s Schema) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(schemaHeaderPrefix)
	b.WriteString(s.name)
	b.WriteByte('\n')
	for _, l := range s.labels {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Parse reads a schema from its sidecar representation
func Parse(r io.Reader) (Schema, error) {
	sc := bufio.NewScanner(r)
	name := ""
	var labels []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, schemaHeaderPrefix) {
			name = strings.TrimPrefix(line, schemaHeaderPrefix)
			continue
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return Schema{}, err
	}
	return New(name, labels)
}

// WriteFile stores the schema sidecar in dir
func WriteFile(dir string, s Schema) error {
	f, err := os.Create(filepath.Join(dir, SchemaFileName))
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads the schema sidecar from dir. found is false when dir has none.
func ReadFile(dir string) (s Schema, found bool, err error) {
	f, err := os.Open(filepath.Join(dir, SchemaFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Schema{}, false, nil
		}
		return Schema{}, false, err
	}
	defer f.Close()

	s, err = Parse(f)
	if err != nil {
		return Schema{}, true, fmt.Errorf("parse %s: %w", SchemaFileName, err)
	}
	return s, true, nil
}
