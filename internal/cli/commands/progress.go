package commands

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// barProgress draws a file progress bar on stderr while a batch runs.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// newBarProgress returns a progress reporter for interactive text output,
// or nil when output is piped, structured or verbose logs are on.
func newBarProgress(r *output.Renderer, w io.Writer, verbose bool) *barProgress {
	if verbose || !r.IsTTY() || r.EffectiveMode() != output.ModeText {
		return nil
	}
	return &barProgress{w: w}
}

func (p *barProgress) OnRunStart(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Converting files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) OnFileDone(*core.FileResult) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) OnRunDone(*core.BatchResult) {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
