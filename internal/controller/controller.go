package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/dashboard"
	"grocerytracker/internal/models"

	"github.com/rs/zerolog"
)

var ErrUpdateInProgress = errors.New("an update is already in progress")

// API is the part of the client the controller drives directly.
type API interface {
	ScrapeAll(ctx context.Context) (*models.ScrapeRun, error)
	ScrapeStatus(ctx context.Context) (*models.ScrapeStatus, error)
	Health(ctx context.Context) error
}

type DashboardLoader interface {
	LoadDashboard(ctx context.Context) (*dashboard.View, error)
}

// Display receives UI state changes. Implementations must be safe for concurrent use.
type Display interface {
	SetBusy(busy bool)
	SetTimestamp(text string)
	SetOnline(online bool)
	Notify(n Notification)
}

type Options struct {
	UpdateTimeout    time.Duration
	TimestampEvery   time.Duration
	UpdateCheckEvery time.Duration
	StatusEvery      time.Duration
}

func OptionsFromConfig(cfg config.ControllerConfig) Options {
	return Options{
		UpdateTimeout:    time.Duration(cfg.UpdateTimeoutSeconds) * time.Second,
		TimestampEvery:   time.Duration(cfg.TimestampRefreshSeconds) * time.Second,
		UpdateCheckEvery: time.Duration(cfg.UpdateCheckSeconds) * time.Second,
		StatusEvery:      time.Duration(cfg.StatusRefreshSeconds) * time.Second,
	}
}

// Controller owns the dashboard's mutable state: the update flag, the busy
// counter, the last loaded view and the server's online status.
type Controller struct {
	api      API
	loader   DashboardLoader
	display  Display
	notifier *Notifier
	opts     Options
	logger   *zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	updating   bool
	busy       int
	online     bool
	loadedAt   time.Time
	seenUpdate *time.Time
	view       *dashboard.View
}

func New(api API, loader DashboardLoader, display Display, opts Options, logger *zerolog.Logger) *Controller {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if display == nil {
		display = nopDisplay{}
	}
	if opts.UpdateTimeout <= 0 {
		opts.UpdateTimeout = 2 * time.Minute
	}
	return &Controller{
		api:      api,
		loader:   loader,
		display:  display,
		notifier: NewNotifier(time.Now),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *Controller) Notifier() *Notifier {
	return c.notifier
}

func (c *Controller) Updating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updating
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy > 0
}

func (c *Controller) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// View returns the last successfully loaded dashboard, nil before the first load.
func (c *Controller) View() *dashboard.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// TriggerUpdate scrapes all stores and reloads the dashboard. Only one update
// runs at a time; a second call while one is in flight is rejected.
func (c *Controller) TriggerUpdate(ctx context.Context) error {
	c.mu.Lock()
	if c.updating {
		c.mu.Unlock()
		c.notify("An update is already in progress", LevelWarning, DefaultNotificationDuration)
		return ErrUpdateInProgress
	}
	c.updating = true
	c.mu.Unlock()

	c.beginBusy()
	defer func() {
		c.endBusy()
		c.mu.Lock()
		c.updating = false
		c.mu.Unlock()
	}()

	updateCtx, cancel := context.WithTimeout(ctx, c.opts.UpdateTimeout)
	defer cancel()

	run, err := c.api.ScrapeAll(updateCtx)
	if err != nil {
		c.logger.Error().Err(err).Msg("price update failed")
		c.notify("Failed to update prices", LevelDanger, DefaultNotificationDuration)
		return fmt.Errorf("update prices: %w", err)
	}
	if failed := failedStores(run); failed > 0 || !run.Success {
		c.notify(fmt.Sprintf("Price update finished with errors (%d of %d stores failed, %d saved)",
			failed, len(run.Results), run.TotalSaved), LevelWarning, DefaultNotificationDuration)
	} else {
		c.notify(fmt.Sprintf("Prices updated successfully (%d saved)", run.TotalSaved), LevelSuccess, DefaultNotificationDuration)
	}

	return c.reload(ctx)
}

func failedStores(run *models.ScrapeRun) int {
	n := 0
	for _, res := range run.Results {
		if !res.Success {
			n++
		}
	}
	return n
}

// Refresh reloads the dashboard without scraping.
func (c *Controller) Refresh(ctx context.Context) error {
	c.beginBusy()
	defer c.endBusy()
	return c.reload(ctx)
}

func (c *Controller) reload(ctx context.Context) error {
	view, err := c.loader.LoadDashboard(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load dashboard data")
		c.notify("Failed to load dashboard data", LevelDanger, DefaultNotificationDuration)
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.view = view
	c.loadedAt = now
	c.seenUpdate = view.Summary.LastUpdate
	c.mu.Unlock()

	c.display.SetTimestamp(c.TimestampText(now))
	return nil
}

// CheckForUpdates compares the server's last scrape with the newest price seen
// at the last load and announces newer data once.
func (c *Controller) CheckForUpdates(ctx context.Context) (bool, error) {
	status, err := c.api.ScrapeStatus(ctx)
	if err != nil {
		return false, err
	}
	if status.LastScrape == nil {
		return false, nil
	}

	c.mu.Lock()
	newer := c.seenUpdate == nil || status.LastScrape.After(*c.seenUpdate)
	if newer {
		seen := *status.LastScrape
		c.seenUpdate = &seen
	}
	c.mu.Unlock()

	if newer {
		c.notify("New prices are available, press Ctrl+R to refresh", LevelInfo, PollNotificationDuration)
	}
	return newer, nil
}

// RefreshStatus probes the server and updates the online indicator.
func (c *Controller) RefreshStatus(ctx context.Context) bool {
	online := c.api.Health(ctx) == nil

	c.mu.Lock()
	changed := c.online != online
	c.online = online
	c.mu.Unlock()

	if changed {
		c.logger.Info().Bool("online", online).Msg("server status changed")
	}
	c.display.SetOnline(online)
	return online
}

// TimestampText describes how long ago the dashboard was loaded.
func (c *Controller) TimestampText(now time.Time) string {
	c.mu.Lock()
	loaded := c.loadedAt
	c.mu.Unlock()

	if loaded.IsZero() {
		return "Last updated: never"
	}
	age := now.Sub(loaded)
	switch {
	case age < time.Minute:
		return "Last updated: just now"
	case age < time.Hour:
		return fmt.Sprintf("Last updated: %d min ago", int(age/time.Minute))
	default:
		return "Last updated: " + loaded.Local().Format("Jan 2 15:04")
	}
}

// Run loads the dashboard and then drives the timestamp, update-check and status
// timers until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.RefreshStatus(ctx)
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("initial dashboard load failed")
	}

	timestamp := newTicker(c.opts.TimestampEvery, time.Minute)
	defer timestamp.Stop()
	updates := newTicker(c.opts.UpdateCheckEvery, 5*time.Minute)
	defer updates.Stop()
	status := newTicker(c.opts.StatusEvery, 30*time.Second)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-timestamp.C:
			c.display.SetTimestamp(c.TimestampText(now))
		case <-updates.C:
			if _, err := c.CheckForUpdates(ctx); err != nil {
				c.logger.Debug().Err(err).Msg("update check failed")
			}
		case <-status.C:
			c.RefreshStatus(ctx)
		}
	}
}

func newTicker(every, fallback time.Duration) *time.Ticker {
	if every <= 0 {
		every = fallback
	}
	return time.NewTicker(every)
}

func (c *Controller) notify(message string, level Level, d time.Duration) {
	n := c.notifier.ShowFor(message, level, d)
	c.display.Notify(n)
}

func (c *Controller) beginBusy() {
	c.mu.Lock()
	c.busy++
	first := c.busy == 1
	c.mu.Unlock()
	if first {
		c.display.SetBusy(true)
	}
}

func (c *Controller) endBusy() {
	c.mu.Lock()
	c.busy--
	last := c.busy == 0
	c.mu.Unlock()
	if last {
		c.display.SetBusy(false)
	}
}

type nopDisplay struct{}

func (nopDisplay) SetBusy(bool) {}
func (nopDisplay) SetTimestamp(string) {}
func (nopDisplay) SetOnline(bool) {}
func (nopDisplay) Notify(Notification) {}
