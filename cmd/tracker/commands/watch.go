package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocerytracker/internal/client"
	"grocerytracker/internal/controller"
	"grocerytracker/internal/dashboard"
	"grocerytracker/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Shows the live price dashboard of a running server.",
	Long: "Shows the live price dashboard of a running server.\n\n" +
		"Type r (or ctrl+r) and Enter to refresh, u (or ctrl+u) to update prices, q to quit.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, "watch")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	out := cmd.OutOrStdout()
	api := client.New(a.cfg.Client.BaseURL, time.Duration(a.cfg.Client.TimeoutSeconds)*time.Second)
	loader := dashboard.NewLoader(api, dashboard.WriterRenderer{W: out}, logging.Component(a.logger, "dashboard"))
	ctl := controller.New(api, loader, newTerminalDisplay(out), controller.OptionsFromConfig(a.cfg.Controller), logging.Component(a.logger, "controller"))

	go readShortcuts(ctx, cmd.InOrStdin(), ctl, quit, a.logger)

	fmt.Fprintf(out, "Watching %s\n", a.cfg.Client.BaseURL)
	return ctl.Run(ctx)
}

// readShortcuts feeds typed lines to the controller until q, EOF or ctx ends.
func readShortcuts(ctx context.Context, in io.Reader, ctl *controller.Controller, quit context.CancelFunc, logger *zerolog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if line == "q" || line == "quit" {
			quit()
			return
		}
		if line == "" {
			continue
		}

		ev, err := parseKeyLine(line)
		if err != nil {
			logger.Debug().Err(err).Str("input", line).Msg("ignored input")
			continue
		}
		// updates can take minutes; keep reading so a second request is rejected
		go func() {
			if _, err := ctl.HandleShortcut(ctx, ev); err != nil && !errors.Is(err, controller.ErrUpdateInProgress) {
				logger.Debug().Err(err).Str("action", controller.ShortcutAction(ev).String()).Msg("shortcut failed")
			}
		}()
	}
}
