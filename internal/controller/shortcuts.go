package controller

import (
	"context"
	"fmt"
	"strings"
)

type Action int

const (
	ActionNone Action = iota
	ActionRefresh
	ActionUpdate
)

func (a Action) String() string {
	switch a {
	case ActionRefresh:
		return "refresh"
	case ActionUpdate:
		return "update"
	default:
		return "none"
	}
}

// KeyEvent is a single key press with its modifiers. Meta is the Cmd key on macOS.
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// ParseShortcut reads forms like "ctrl+r", "Cmd+U" or a raw control character
// as sent by a terminal (0x12 for Ctrl+R).
func ParseShortcut(s string) (KeyEvent, error) {
	if len(s) == 1 && s[0] >= 1 && s[0] <= 26 {
		return KeyEvent{Key: string(rune('a' + s[0] - 1)), Ctrl: true}, nil
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return KeyEvent{}, fmt.Errorf("empty shortcut")
	}

	parts := strings.Split(strings.ToLower(s), "+")
	var ev KeyEvent
	for _, mod := range parts[:len(parts)-1] {
		switch strings.TrimSpace(mod) {
		case "ctrl", "control":
			ev.Ctrl = true
		case "cmd", "meta", "command", "super":
			ev.Meta = true
		default:
			return KeyEvent{}, fmt.Errorf("unknown modifier %q in %q", mod, s)
		}
	}
	ev.Key = strings.TrimSpace(parts[len(parts)-1])
	if ev.Key == "" {
		return KeyEvent{}, fmt.Errorf("missing key in %q", s)
	}
	return ev, nil
}

// ShortcutAction maps Ctrl/Cmd+R to refresh and Ctrl/Cmd+U to update.
func ShortcutAction(ev KeyEvent) Action {
	if !ev.Ctrl && !ev.Meta {
		return ActionNone
	}
	switch ev.Key {
	case "r":
		return ActionRefresh
	case "u":
		return ActionUpdate
	default:
		return ActionNone
	}
}

// HandleShortcut runs the action bound to ev. It reports false for unbound keys.
func (c *Controller) HandleShortcut(ctx context.Context, ev KeyEvent) (bool, error) {
	switch ShortcutAction(ev) {
	case ActionRefresh:
		return true, c.Refresh(ctx)
	case ActionUpdate:
		return true, c.TriggerUpdate(ctx)
	default:
		return false, nil
	}
}
