// Command vibebot launches one or more headless clients against a single
// server, per a YAML configuration file, with an optional live status TUI
// and a Prometheus metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/StoreStation/vibebot/pkg/bot"
	"github.com/StoreStation/vibebot/pkg/config"
	"github.com/StoreStation/vibebot/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	withTUI := flag.Bool("tui", false, "show a live status dashboard for the first configured client")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vibebot: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := newLogger(cfg.LogLevel)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.New()
		go serveMetrics(cfg.Metrics.Addr, reg, log)
	}

	clients := make([]*bot.Client, 0, len(cfg.Clients))
	var dashboardEvents chan bot.Event

	for i, clientCfg := range cfg.Clients {
		c := bot.New(cfg.Server, clientCfg, cfg.WorldCache, log.With("client", clientCfg.Username), reg)
		registerLogHandlers(c, log, clientCfg.Username)

		if *withTUI && i == 0 {
			dashboardEvents = make(chan bot.Event, 32)
			forwardToDashboard(c, dashboardEvents)
		}

		if err := c.Connect(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "vibebot: connect %s: %v\n", clientCfg.Username, err)
			os.Exit(1)
		}
		clients = append(clients, c)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if dashboardEvents != nil {
		runDashboard(cfg.Clients[0].Username, dashboardEvents)
	} else {
		<-sigCh
		log.Info("shutting down on signal")
	}

	for _, c := range clients {
		c.Disconnect()
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	case config.LogOff:
		lvl = slog.LevelError + 4
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func serveMetrics(addr string, reg *metrics.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	log.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", "error", err)
	}
}

// registerLogHandlers logs every observable event except spawn, at a level
// matching its weight (position at DEBUG, disconnect at WARN, error at
// ERROR, the rest at INFO), matching the teacher's
// log-everything-important style.
func registerLogHandlers(c *bot.Client, log *slog.Logger, username string) {
	log = log.With("client", username)
	c.On(bot.EventLogin, func(ev bot.Event) {
		log.Info("joined world", "entityId", ev.EntityID)
	})
	c.On(bot.EventPosition, func(ev bot.Event) {
		log.Debug("position sync", "x", ev.X, "y", ev.Y, "z", ev.Z)
	})
	c.On(bot.EventHealth, func(ev bot.Event) {
		log.Info("health update", "health", ev.Health, "food", ev.Food)
	})
	c.On(bot.EventChat, func(ev bot.Event) {
		log.Info("chat", "text", ev.Text)
	})
	c.On(bot.EventArrived, func(ev bot.Event) {
		log.Info("arrived at goal")
	})
	c.On(bot.EventDisconnect, func(ev bot.Event) {
		log.Warn("disconnected", "reason", ev.Reason)
	})
	c.On(bot.EventError, func(ev bot.Event) {
		log.Error("client error", "error", ev.Err)
	})
}

// forwardToDashboard feeds every event into ch for the TUI, dropping the
// oldest queued event rather than blocking the client's cooperative loop
// if the TUI falls behind.
func forwardToDashboard(c *bot.Client, ch chan bot.Event) {
	forward := func(ev bot.Event) {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
	for _, t := range []bot.EventType{
		bot.EventLogin, bot.EventPosition, bot.EventHealth,
		bot.EventChat, bot.EventArrived, bot.EventDisconnect, bot.EventError,
	} {
		c.On(t, forward)
	}
}
