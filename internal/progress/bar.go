// internal/progress/bar.go

package progress

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Bar is a terminal progress indicator. It counts lines or topics and doubles
// as a log writer so log lines print above the bar instead of through it.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	out io.Writer
}

// New creates a new Bar with the given total, drawn on stderr
func New(total int, description string) *Bar {
	return NewWithWriter(total, description, os.Stderr)
}

// NewWithWriter creates a new Bar drawing on w
func NewWithWriter(total int, description string, w io.Writer) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	)
	_ = bar.RenderBlank()

	return &Bar{bar: bar, out: w}
}

// Add advances the bar by n
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Add(n)
}

// Write clears the bar, writes p, and redraws the bar below it
func (b *Bar) Write(p []byte) (int, error) {
	return b.writeAbove(b.out, p)
}

func (b *Bar) writeAbove(w io.Writer, p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Clear()
	n, err := w.Write(p)
	_ = b.bar.RenderBlank()
	return n, err
}

type aboveWriter struct {
	bar *Bar
	w   io.Writer
}

func (a aboveWriter) Write(p []byte) (int, error) { return a.bar.writeAbove(a.w, p) }

// Finish fills the bar and moves to a new line
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Finish()
}

// Nop counts without drawing. Writes pass through to W when set.
type Nop struct {
	W     io.Writer
	Total int
}

// Add implements batch.Counter
func (n *Nop) Add(delta int) { n.Total += delta }

func (n *Nop) Write(p []byte) (int, error) {
	if n.W == nil {
		return len(p), nil
	}
	return n.W.Write(p)
}

// Finish is a no-op
func (n *Nop) Finish() {}

// Indicator is what a stage driver needs from a progress display
type Indicator interface {
	Add(n int)
	Write(p []byte) (int, error)
	Finish()
}

// Start returns a drawn Bar when enabled, otherwise a Nop passing writes to stderr
func Start(enabled bool, total int, description string) Indicator {
	if !enabled {
		return &Nop{W: os.Stderr}
	}
	return New(total, description)
}

// Above returns a writer to w that keeps its output clear of a drawn bar, for
// report lines sent to a stream other than the bar's own
func Above(ind Indicator, w io.Writer) io.Writer {
	if b, ok := ind.(*Bar); ok {
		return aboveWriter{bar: b, w: w}
	}
	return w
}
