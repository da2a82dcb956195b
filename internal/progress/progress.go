// Package progress renders a stderr progress bar for long analyses.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar over a known number of methods. A nil or
// disabled tracker is safe to use; every method becomes a no-op.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
}

// New creates a tracker for total items. When enabled is false the tracker
// renders nothing, which keeps call sites free of conditionals.
func New(label string, total int, enabled bool) *Tracker {
	if !enabled {
		return &Tracker{label: label}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label}
}

// Tick advances the bar by one. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil || t.bar == nil {
		return
	}
	t.bar.Add(1)
}

// Finish clears the bar without further output.
func (t *Tracker) Finish() {
	if t == nil || t.bar == nil {
		return
	}
	t.bar.Finish()
	t.bar.Clear()
}

// Fail clears the bar and reports the failure on stderr.
func (t *Tracker) Fail(err error) {
	if t == nil || t.bar == nil {
		return
	}
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s error: %v\n", t.label, err)
}
