package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/skelly-dev/makegraph/internal/graph"
)

// passProgress keeps a single status line on an interactive stderr while
// a dependency pass scans projects. It stays silent otherwise.
type passProgress struct {
	out      io.Writer
	strategy string
	total    int
	scanned  int
	edges    int
	dropped  int
	start    time.Time
	width    int
}

func newPassProgress(strategy string, total int, quiet bool) *passProgress {
	p := &passProgress{strategy: strategy, total: total, start: time.Now()}
	fd := os.Stderr.Fd()
	if !quiet && total > 0 && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		p.out = os.Stderr
	}
	return p
}

// Step records the result of scanning one project.
func (p *passProgress) Step(project string, result *graph.DependencyResult) {
	p.scanned++
	if result != nil {
		p.edges += len(result.Dependencies)
		p.dropped += len(result.Dropped)
	}
	if p.out == nil {
		return
	}
	if len(project) > 48 {
		project = "..." + project[len(project)-45:]
	}
	p.render(fmt.Sprintf("[%d/%d] %s  edges=%d dropped=%d  (%s)",
		p.scanned, p.total, project, p.edges, p.dropped, p.strategy))
}

// Finish replaces the status line with the pass totals.
func (p *passProgress) Finish(reused int) {
	if p.out == nil {
		return
	}
	p.render(fmt.Sprintf("scanned %d/%d projects, reused %d, %d edges found, %d dropped in %s",
		p.scanned, p.total, reused, p.edges, p.dropped, time.Since(p.start).Round(time.Millisecond)))
	fmt.Fprintln(p.out)
}

func (p *passProgress) render(line string) {
	pad := p.width - len(line)
	p.width = len(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(p.out, "\r%s", line)
}
