package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/brightwell-health/frontdesk/internal/checkin"
	appconfig "github.com/brightwell-health/frontdesk/internal/config"
	"github.com/brightwell-health/frontdesk/internal/gateway"
	"github.com/brightwell-health/frontdesk/internal/register"
	"github.com/brightwell-health/frontdesk/internal/schedule"
	"github.com/brightwell-health/frontdesk/internal/tui"
	"github.com/brightwell-health/frontdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	client := gateway.NewClient(cfg.RecordsBaseURL, cfg.RequestTimeout, logger.Component("gateway"))

	bridge := tui.NewBridge()

	sess := schedule.NewSession(schedule.Config{
		Gateway:        client,
		Surface:        bridge,
		Notifier:       bridge,
		Logger:         logger.Component("schedule"),
		SearchDebounce: cfg.SearchDebounce,
	})
	bridge.Bind(sess)

	queue := checkin.NewQueue(client, bridge, logger.Component("checkin"))
	wizard := register.NewWizard(client, logger.Component("register"))

	model := tui.New(tui.Config{
		Session: sess,
		Bridge:  bridge,
		Queue:   queue,
		Wizard:  wizard,
		Logger:  logger.Component("tui"),
	})

	// The send function must be attached before the session loop starts:
	// its first gateway completions raise toasts and loading flips.
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge.SetSend(func(msg any) { program.Send(msg) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "frontdesk: %v\n", err)
		os.Exit(1)
	}
}
