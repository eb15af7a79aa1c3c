// Package console prints run progress to a terminal
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"drivebak/internal/adapters/tui/styles"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// Reporter writes the run summary and per-file progress lines. Only the
// summary and the start notice are printed unless verbose is set.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	summary lipgloss.Style
	marker  lipgloss.Style
	detail  lipgloss.Style
	write   lipgloss.Style
}

// Ensure Reporter implements ports.Reporter
var _ ports.Reporter = (*Reporter)(nil)

// NewReporter creates a Reporter. Colour is decided by whether out is a
// terminal.
func NewReporter(out io.Writer, verbose bool) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:     out,
		verbose: verbose,
		summary: r.NewStyle().Foreground(styles.Warning),
		marker:  r.NewStyle().Foreground(styles.Primary).Bold(true),
		detail:  r.NewStyle().Foreground(styles.Muted),
		write:   r.NewStyle().Foreground(styles.Secondary),
	}
}

// Announce prints what is about to happen
func (r *Reporter) Announce(s domain.RunSummary) {
	label := s.Volume.Label
	if label == "" {
		label = s.Volume.Serial.Hex()
	}
	r.println(r.summary.Render(fmt.Sprintf("Backing up %s to drive %s(%s) with flags --verbose=%t and --dry-run=%t",
		s.Source, s.Volume.Root, label, s.Verbose, s.DryRun)))
}

// Event prints one progress line
func (r *Reporter) Event(ev domain.Event) {
	if ev.Kind == domain.EventStart {
		r.println(r.prefix(ev) + fmt.Sprintf("Copying %s -> %s", ev.Source, ev.Target))
		return
	}
	if !r.verbose {
		return
	}

	var line string
	switch ev.Kind {
	case domain.EventCompare:
		line = r.detail.Render(fmt.Sprintf("Comparing %s -> %s", ev.Source, ev.Target))
	case domain.EventMkdir:
		line = fmt.Sprintf("Making directory: %s", ev.Target)
	case domain.EventProbe:
		line = r.detail.Render(fmt.Sprintf("New backup location: %s", ev.Target))
	case domain.EventDuplicate:
		line = "File hashes equal"
	case domain.EventWrite:
		line = r.write.Render(fmt.Sprintf("%s -> %s", ev.Source, ev.Target))
	case domain.EventSkip:
		line = r.detail.Render(fmt.Sprintf("Skipping %s", ev.Source))
	default:
		return
	}
	r.println(r.prefix(ev) + line)
}

func (r *Reporter) prefix(ev domain.Event) string {
	if !ev.DryRun {
		return ""
	}
	return r.marker.Render("[dry-run]") + " "
}

func (r *Reporter) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}
