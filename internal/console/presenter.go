// Package console renders simulation output for a terminal audience:
// banners, event headers, macro state panels, narratives, and progress.
// Read-only consumer of the core - it never feeds anything back.
package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/macrosim/internal/macro"
	"github.com/roach88/macrosim/internal/store"
	"github.com/roach88/macrosim/internal/timeline"
)

// ANSI escape sequences. Disabled when colors are off.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

const rule = "============================================================"

// Presenter writes formatted simulation output to a single writer.
// All methods are best-effort display helpers; they never return errors.
type Presenter struct {
	w       io.Writer
	colors  bool
	printer *message.Printer
}

// NewPresenter creates a Presenter writing to w. colors toggles ANSI
// escapes; pass false when the destination is not a terminal.
func NewPresenter(w io.Writer, colors bool) *Presenter {
	return &Presenter{
		w:       w,
		colors:  colors,
		printer: message.NewPrinter(language.English),
	}
}

func (p *Presenter) paint(code, s string) string {
	if !p.colors {
		return s
	}
	return code + s + ansiReset
}

// Welcome prints the opening banner.
func (p *Presenter) Welcome() {
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.paint(ansiBold, "  MACRO TRADING SIMULATOR"))
	fmt.Fprintln(p.w, "  Time-compressed economic simulation")
	fmt.Fprintln(p.w, rule)
}

// Goodbye prints the closing banner.
func (p *Presenter) Goodbye() {
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, "  Simulation complete. Goodbye.")
	fmt.Fprintln(p.w, rule)
}

// Header prints a section header stamped with the simulated time.
func (p *Presenter) Header(title string, simTime time.Time) {
	fmt.Fprintf(p.w, "\n%s\n", rule)
	fmt.Fprintf(p.w, "%s  %s\n",
		p.paint(ansiBold, title),
		p.paint(ansiDim, simTime.Format("2006-01-02 15:04")))
	fmt.Fprintln(p.w, rule)
}

// EventSummary prints a one-line description of a firing event.
func (p *Presenter) EventSummary(ev timeline.Event) {
	stamp := ev.ScheduledAt.Format("2006-01-02 15:04")
	if ev.IsRelease() {
		actual := "pending"
		if ev.Actual != nil {
			actual = fmt.Sprintf("%g", *ev.Actual)
		}
		fmt.Fprintf(p.w, "[%s] %s %s (Consensus: %g, Actual: %s)\n",
			stamp, p.paint(ansiCyan, "ECONOMIC RELEASE:"), ev.Name, ev.Consensus, actual)
		return
	}
	fmt.Fprintf(p.w, "[%s] %s %s\n",
		stamp, p.paint(ansiYellow, "MACRO EVENT:"), ev.Headline)
}

// MacroState prints the three variables and the derived regime.
func (p *Presenter) MacroState(st macro.State, regime macro.Regime) {
	fmt.Fprintf(p.w, "  Growth:     %s\n", p.paint(colorForSign(st.Growth), fmt.Sprintf("%+.2f%%", st.Growth)))
	fmt.Fprintf(p.w, "  Inflation:  %+.2f%%\n", st.Inflation)
	fmt.Fprintf(p.w, "  Volatility: %.2f\n", st.Volatility)
	fmt.Fprintf(p.w, "  Regime:     %s\n", p.paint(ansiBold, regime.String()))
}

// Transition prints a before/after line per variable.
func (p *Presenter) Transition(before, after macro.State) {
	fmt.Fprintf(p.w, "  Growth     %.2f -> %.2f\n", before.Growth, after.Growth)
	fmt.Fprintf(p.w, "  Inflation  %.2f -> %.2f\n", before.Inflation, after.Inflation)
	fmt.Fprintf(p.w, "  Volatility %.2f -> %.2f\n", before.Volatility, after.Volatility)
}

// Narrative prints a generated commentary block under a type-specific
// heading.
func (p *Presenter) Narrative(narrativeType, content string) {
	var heading string
	switch narrativeType {
	case "pre_release":
		heading = "PRE-RELEASE ANALYSIS"
	case "post_release":
		heading = "MARKET REACTION"
	case "event":
		heading = "EVENT COMMENTARY"
	default:
		heading = strings.ToUpper(narrativeType)
	}

	fmt.Fprintf(p.w, "\n%s\n", p.paint(ansiBlue, "--- "+heading+" ---"))
	fmt.Fprintln(p.w, strings.TrimSpace(content))
	fmt.Fprintln(p.w, p.paint(ansiBlue, "---"))
}

// Progress prints a single progress line with a text bar.
func (p *Presenter) Progress(pr timeline.Progress) {
	const width = 30
	filled := 0
	if pr.Total > 0 {
		filled = pr.Processed * width / pr.Total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)

	line := fmt.Sprintf("[%s] %d/%d (%.1f%%)", bar, pr.Processed, pr.Total, pr.Percentage)
	if pr.Known {
		line += "  sim time: " + pr.CurrentSimTime.Format("2006-01-02 15:04")
	}
	fmt.Fprintln(p.w, line)
}

// Stats prints record counts with grouped digits.
func (p *Presenter) Stats(st store.Stats) {
	p.printer.Fprintf(p.w, "  Releases:  %d total, %d pending\n", st.TotalReleases, st.FutureReleases)
	p.printer.Fprintf(p.w, "  Events:    %d total, %d pending\n", st.TotalEvents, st.FutureEvents)
	p.printer.Fprintf(p.w, "  History:   %d records\n", st.HistoryRecords)
	p.printer.Fprintf(p.w, "  Narratives: %d generated\n", st.Narratives)
}

// SystemLog prints a timestamped, level-tagged line.
func (p *Presenter) SystemLog(msg, level string, simTime time.Time) {
	color := ansiDim
	switch level {
	case "SUCCESS":
		color = ansiGreen
	case "WARNING":
		color = ansiYellow
	case "ERROR":
		color = ansiRed
	}
	fmt.Fprintf(p.w, "[%s] %s %s\n",
		simTime.Format("15:04"), p.paint(color, "["+level+"]"), msg)
}

func colorForSign(v float64) string {
	if v < 0 {
		return ansiRed
	}
	return ansiGreen
}
