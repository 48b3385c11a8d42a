package reload

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattdef/dampen-sub004/pkg/ir"
)

var (
	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	overlayLocStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Overlay holds the parse error shown while the last known-good document
// keeps rendering. It belongs to the coordinator's loop and needs no locking.
type Overlay struct {
	active bool
	err    *ir.ParseError
	since  time.Time
}

// Show activates the overlay for a parse failure.
func (o *Overlay) Show(err *ir.ParseError) {
	o.active = true
	o.err = err
	o.since = time.Now()
}

// Clear deactivates the overlay after a successful reload.
func (o *Overlay) Clear() {
	o.active = false
	o.err = nil
}

// Active reports whether an error is currently displayed.
func (o *Overlay) Active() bool {
	return o.active
}

// Err returns the displayed parse error, or nil when inactive.
func (o *Overlay) Err() *ir.ParseError {
	return o.err
}

// View renders the overlay box for terminal display. Empty when inactive.
func (o *Overlay) View() string {
	if !o.active || o.err == nil {
		return ""
	}
	loc := fmt.Sprintf("%s:%d:%d", o.err.File, o.err.Line, o.err.Col)
	body := overlayTitleStyle.Render("parse error") + "\n" +
		overlayLocStyle.Render(loc) + "\n\n" +
		o.err.Message
	return overlayBoxStyle.Render(body)
}
