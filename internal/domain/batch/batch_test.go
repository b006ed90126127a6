package batch

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tweetmood/internal/domain/pipeline"
)

type countingCounter struct{ total int }

func (c *countingCounter) Add(n int) { c.total += n }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseName(t *testing.T) {
	cases := []struct {
		name   string
		lang   string
		id     int
		hasErr bool
	}{
		{"ru_0.tsv", "ru", 0, false},
		{"pl_12.tsv", "pl", 12, false},
		{"/tmp/x/uk_3.tsv", "uk", 3, false},
		{"ru_x.tsv", "", 0, true},
		{"rus_1.tsv", "", 0, true},
	}
	for _, tc := range cases {
		lang, id, err := ParseName(tc.name)
		if tc.hasErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil || lang != tc.lang || id != tc.id {
			t.Errorf("%s: got (%q,%d,%v)", tc.name, lang, id, err)
		}
	}
	if Name("ru", 4) != "ru_4.tsv" {
		t.Fatalf("Name=%q", Name("ru", 4))
	}
}

func TestOpenDirMissing(t *testing.T) {
	_, err := OpenDir(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, pipeline.ErrDirMissing) {
		t.Fatalf("err=%v want ErrDirMissing", err)
	}
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]int{
		"":            0,
		"a\n":         1,
		"a\nb\n":      2,
		"a\nb":        2,
		"\n\n":        2,
		"one line no": 1,
	}
	for content, want := range cases {
		p := filepath.Join(dir, "f.tsv")
		writeFile(t, p, content)
		got, err := CountLines(p)
		if err != nil || got != want {
			t.Errorf("CountLines(%q)=%d,%v want %d", content, got, err, want)
		}
	}
}

func TestWalkOrderAndProgress(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "uk_1.tsv"), "a\nb\nc\n")
	writeFile(t, filepath.Join(root, "pl_0.tsv"), "x\n")
	writeFile(t, filepath.Join(root, "labels.schema"), "# schema: war\n")
	writeFile(t, filepath.Join(root, "pl_0.tsv.lines"), "0\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored\n")

	d, err := OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}

	total, err := d.Lines()
	if err != nil || total != 4 {
		t.Fatalf("Lines=%d,%v", total, err)
	}

	c := &countingCounter{}
	var names []string
	for f, err := range d.Walk(c) {
		if err != nil {
			t.Fatal(err)
		}
		// the counter only moves after the consumer is done with the file
		if len(names) == 0 && c.total != 0 {
			t.Fatalf("counter advanced before first file consumed: %d", c.total)
		}
		names = append(names, f.Name)
	}
	if len(names) != 2 || names[0] != "pl_0.tsv" || names[1] != "uk_1.tsv" {
		t.Fatalf("names=%v", names)
	}
	if c.total != 4 {
		t.Fatalf("counter=%d want 4", c.total)
	}

	// restartable
	again := 0
	for range d.Files() {
		again++
	}
	if again != 2 {
		t.Fatalf("second pass yielded %d files", again)
	}
}

func TestWriteAtomicLeavesNothingOnError(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "ru_0.tsv")
	boom := errors.New("boom")

	err := WriteAtomic(target, func(w *bufio.Writer) error {
		w.WriteString("partial\n")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("leftover files: %v", entries)
	}

	if err := WriteAtomic(target, func(w *bufio.Writer) error {
		_, err := w.WriteString("ok\n")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(target)
	if string(b) != "ok\n" {
		t.Fatalf("content=%q", b)
	}
}

func TestForEachLineAndAppend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pl_1.tsv")
	if err := AppendLines(p, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if err := AppendLines(p, []string{"c"}); err != nil {
		t.Fatal(err)
	}

	var got []string
	err := ForEachLine(p, func(n int, line string) error {
		if n != len(got) {
			t.Fatalf("line number %d at position %d", n, len(got))
		}
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("got %v", got)
	}
}

func TestRemoveOutput(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ru_0.tsv")
	writeFile(t, p, "1\n")
	writeFile(t, LinesPath(p), "0\n")

	if err := RemoveOutput(p); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{p, LinesPath(p)} {
		if _, err := os.Stat(name); !os.IsNotExist(err) {
			t.Fatalf("%s still exists: %v", name, err)
		}
	}
	// Nothing left to remove
	if err := RemoveOutput(p); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}
