package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/davecgh/go-spew/spew"

	"stravadash/internal/config"
	"stravadash/internal/logger"
	"stravadash/internal/services"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := logger.New(os.Stderr, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if !cfg.Strava.DirectTokenEnabled() {
		log.Error("the terminal dashboard needs STRAVA_ACCESS_TOKEN")
		os.Exit(1)
	}

	svc := services.NewDashboardService(services.StravaClients(cfg.Strava.APIURL), cfg.Dashboard.Options())
	token := cfg.Strava.DirectToken()

	switch flag.Arg(0) {
	case "local":
		if err := runLocal(svc, cfg); err != nil {
			log.Error("error running dashboard", "err", err)
			os.Exit(1)
		}
		return
	case "dump":
		ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
		defer cancel()
		d, err := svc.Build(ctx, token)
		if err != nil {
			log.Error("error building dashboard", "err", err)
			os.Exit(1)
		}
		spew.Dump(d)
		return
	case "":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want local or dump)\n", flag.Arg(0))
		os.Exit(2)
	}

	s, err := wish.NewServer(
		wish.WithAddress(cfg.SSH.Addr()),
		wish.WithHostKeyPath(cfg.SSH.HostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(svc, cfg)),
			activeterm.Middleware(), // Bubble Tea apps usually require a PTY.
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Error("could not create server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting ssh server", "addr", cfg.SSH.Addr())
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error("could not start server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("stopping ssh server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error("could not stop server", "err", err)
	}
}

// teaHandler builds one model per SSH session.
func teaHandler(svc *services.DashboardService, cfg *config.Config) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		// This should never fail, as we are using the activeterm middleware.
		pty, _, _ := s.Pty()

		// Styles must come from the session's renderer so the colour
		// profile is the client's, not the server's.
		renderer := bubbletea.MakeRenderer(s)
		m := newModel(svc, cfg.Strava.DirectToken(), cfg.Dashboard.RefreshInterval, pty.Window.Width, pty.Window.Height, renderer)
		m = m.refreshState()
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

func runLocal(svc *services.DashboardService, cfg *config.Config) error {
	f, err := tea.LogToFile("stravadash.log", "")
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	defer f.Close()
	slog.SetDefault(logger.New(f, cfg.Env, cfg.LogLevel))

	m := newModel(svc, cfg.Strava.DirectToken(), cfg.Dashboard.RefreshInterval, 80, 24, lipgloss.DefaultRenderer())
	m = m.refreshState()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
