package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"grocerytracker/internal/controller"

	"github.com/jedib0t/go-pretty/v6/text"
)

// terminalDisplay prints controller state changes as status lines.
type terminalDisplay struct {
	mu     sync.Mutex
	w      io.Writer
	online *bool
}

func newTerminalDisplay(w io.Writer) *terminalDisplay {
	return &terminalDisplay{w: w}
}

func (d *terminalDisplay) SetBusy(busy bool) {
	if busy {
		d.println(text.Faint.Sprint("Loading..."))
	}
}

func (d *terminalDisplay) SetTimestamp(s string) {
	d.println(text.Faint.Sprint(s))
}

// SetOnline only prints transitions.
func (d *terminalDisplay) SetOnline(online bool) {
	d.mu.Lock()
	changed := d.online == nil || *d.online != online
	d.online = &online
	d.mu.Unlock()
	if !changed {
		return
	}
	if online {
		d.println(text.FgGreen.Sprint("● server online"))
	} else {
		d.println(text.FgRed.Sprint("● server offline"))
	}
}

func (d *terminalDisplay) Notify(n controller.Notification) {
	d.println(n.String())
}

func (d *terminalDisplay) println(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.w, s)
}

// parseKeyLine reads one line typed in watch mode. Bare letters stand for
// their Ctrl shortcut since a line-buffered terminal swallows most control keys.
func parseKeyLine(line string) (controller.KeyEvent, error) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) == 1 && trimmed[0] >= 'a' && trimmed[0] <= 'z' {
		return controller.KeyEvent{Key: trimmed, Ctrl: true}, nil
	}
	if len(line) == 1 {
		return controller.ParseShortcut(line)
	}
	return controller.ParseShortcut(trimmed)
}
