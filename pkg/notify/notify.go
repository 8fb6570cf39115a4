// Package notify provides the audio feedback side effects for turn outcomes.
// Feedback is fire-and-forget: it must never delay the watch loop.
package notify

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Notifier signals turn success or failure to the user.
type Notifier interface {
	Success()
	Failure()
}

// Bell rings the terminal bell: once for a completed reply, twice for a
// failed turn. Disabled automatically when stdout is not a terminal.
type Bell struct {
	enabled bool
}

// NewBell returns a Bell wired to stdout.
func NewBell() *Bell {
	return &Bell{
		enabled: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// Success rings once, asynchronously.
func (b *Bell) Success() {
	b.ring(1)
}

// Failure rings twice, asynchronously.
func (b *Bell) Failure() {
	b.ring(2)
}

func (b *Bell) ring(n int) {
	if !b.enabled {
		return
	}
	go func() {
		for i := 0; i < n; i++ {
			if i > 0 {
				time.Sleep(150 * time.Millisecond)
			}
			os.Stdout.WriteString("\a")
		}
	}()
}

// Silent is a no-op Notifier for quiet mode and tests.
type Silent struct{}

func (Silent) Success() {}
func (Silent) Failure() {}
