package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarWriteKeepsLogLine(t *testing.T) {
	var buf bytes.Buffer
	b := NewWithWriter(10, "classify", &buf)
	b.Add(3)

	if _, err := b.Write([]byte("WARN: skipped line 4\n")); err != nil {
		t.Fatal(err)
	}
	b.Finish()

	if !strings.Contains(buf.String(), "WARN: skipped line 4") {
		t.Fatalf("log line lost: %q", buf.String())
	}
}

func TestNopCounts(t *testing.T) {
	var buf bytes.Buffer
	n := &Nop{W: &buf}
	n.Add(2)
	n.Add(5)
	if n.Total != 7 {
		t.Fatalf("Total=%d", n.Total)
	}
	_, _ = n.Write([]byte("x"))
	if buf.String() != "x" {
		t.Fatalf("passthrough=%q", buf.String())
	}
}

func TestAboveKeepsReportOffBarStream(t *testing.T) {
	var drawn, report bytes.Buffer
	b := NewWithWriter(4, "summarize", &drawn)
	b.Add(1)

	w := Above(b, &report)
	if _, err := w.Write([]byte("'wojna' feels 90.0% 'support'\n")); err != nil {
		t.Fatal(err)
	}
	b.Finish()

	if report.String() != "'wojna' feels 90.0% 'support'\n" {
		t.Fatalf("report=%q", report.String())
	}
	if strings.Contains(drawn.String(), "feels") {
		t.Fatalf("report line drawn with the bar: %q", drawn.String())
	}
}

func TestAboveWithoutBar(t *testing.T) {
	var report bytes.Buffer
	if w := Above(&Nop{}, &report); w != &report {
		t.Fatalf("Above(Nop) wrapped the writer: %T", w)
	}
}
