package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Console styling for the per-account result lines. Structured logs go to
// slog; these lines are for the human watching the terminal.
type reportStyles struct {
	account  lipgloss.Style
	mined    lipgloss.Style
	cooldown lipgloss.Style
	notFound lipgloss.Style
	failed   lipgloss.Style
	faint    lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		account:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		mined:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		cooldown: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		notFound: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		failed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		faint:    lipgloss.NewStyle().Faint(true),
	}
}

// reporter serializes writes: overlapping cycles share one output stream.
type reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles reportStyles
}

func newReporter(out io.Writer) *reporter {
	return &reporter{out: out, styles: newReportStyles()}
}

func (r *reporter) mined(account, txID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s %s\n",
		r.styles.account.Render(account),
		r.styles.mined.Render("mined"),
		r.styles.faint.Render(txID),
	)
}

func (r *reporter) dryRun(account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.account.Render(account),
		r.styles.faint.Render("eligible (dry run, not broadcast)"),
	)
}

func (r *reporter) cooldown(account string, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.account.Render(account),
		r.styles.cooldown.Render("in cooldown, "+FormatRemaining(remaining)+" remaining"),
	)
}

func (r *reporter) notFound(account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.account.Render(account),
		r.styles.notFound.Render("account not found on-chain"),
	)
}

func (r *reporter) failed(account string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s %s\n",
		r.styles.account.Render(account),
		r.styles.failed.Render("mine failed"),
		r.styles.faint.Render(err.Error()),
	)
}

func (r *reporter) skipped(account, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.account.Render(account),
		r.styles.notFound.Render("skipped: "+reason),
	)
}

// FormatRemaining decomposes a wait into hours, minutes and seconds without
// losing a second across the split.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	if d%time.Second > 0 {
		total++ // report partial seconds as a whole second, never as zero
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
