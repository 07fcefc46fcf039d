package controller

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
	LevelInfo    Level = "info"
)

const (
	DefaultNotificationDuration = 4 * time.Second
	// PollNotificationDuration is used for messages raised by background polls.
	PollNotificationDuration = 8 * time.Second
)

func (l Level) Colors() text.Colors {
	switch l {
	case LevelSuccess:
		return text.Colors{text.FgGreen}
	case LevelWarning:
		return text.Colors{text.FgYellow}
	case LevelDanger:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgCyan}
	}
}

type Notification struct {
	ID       string
	Message  string
	Level    Level
	Created  time.Time
	Duration time.Duration
}

// Expired reports whether the notification's duration has fully elapsed at now.
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.Created.Add(n.Duration))
}

func (n Notification) String() string {
	return n.Level.Colors().Sprint("[" + string(n.Level) + "] " + n.Message)
}

// Notifier keeps transient notifications until they expire or are dismissed.
type Notifier struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

func NewNotifier(now func() time.Time) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{now: now}
}

// Show adds a notification with the default duration.
func (n *Notifier) Show(message string, level Level) Notification {
	return n.ShowFor(message, level, DefaultNotificationDuration)
}

func (n *Notifier) ShowFor(message string, level Level, d time.Duration) Notification {
	if d <= 0 {
		d = DefaultNotificationDuration
	}
	item := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Level:    level,
		Created:  n.now(),
		Duration: d,
	}

	n.mu.Lock()
	n.items = append(n.items, item)
	n.mu.Unlock()
	return item
}

// Active returns the notifications still visible at now and forgets expired ones.
func (n *Notifier) Active(now time.Time) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	kept := n.items[:0]
	for _, item := range n.items {
		if !item.Expired(now) {
			kept = append(kept, item)
		}
	}
	n.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a notification before it expires.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}
