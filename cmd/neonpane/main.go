package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eliasnord/neonpane/internal/api"
	"github.com/eliasnord/neonpane/internal/auth"
	"github.com/eliasnord/neonpane/internal/conn"
	"github.com/eliasnord/neonpane/internal/logger"
	"github.com/eliasnord/neonpane/internal/state"
	"github.com/eliasnord/neonpane/internal/storage"
	"github.com/eliasnord/neonpane/internal/ui"
	"github.com/eliasnord/neonpane/internal/view"
	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://console.neon.tech"

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	logPath := env("NEONPANE_LOG_FILE", filepath.Join(os.TempDir(), "neonpane.log"))
	if err := logger.Init(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	repository, err := storage.NewLocalRepository()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open config: %v\n", err)
		os.Exit(1)
	}

	oauthConf := &oauth2.Config{
		ClientID: env("NEONPANE_OAUTH_CLIENT_ID", "neonpane"),
		Endpoint: oauth2.Endpoint{
			AuthURL:  env("NEONPANE_OAUTH_AUTH_URL", "https://oauth2.neon.tech/oauth2/auth"),
			TokenURL: env("NEONPANE_OAUTH_TOKEN_URL", "https://oauth2.neon.tech/oauth2/token"),
		},
		Scopes: []string{"urn:neoncloud:projects:read", "urn:neoncloud:projects:create"},
	}
	authMgr := auth.NewManager(oauthConf)

	baseURL := env("NEONPANE_API_URL", defaultAPIURL)
	active, err := repository.GetActiveProfile()
	if err == nil && active != nil && active.BaseURL != "" {
		baseURL = active.BaseURL
	}

	client := api.NewClient(baseURL, authMgr)
	gateway := api.NewGateway(client)
	machine := state.NewMachine(gateway)
	scanner := conn.NewScanner()

	renderer := ui.NewProgramRenderer()
	controller := view.NewController(machine, authMgr, renderer)

	model := ui.NewModel(repository, authMgr, gateway, machine, controller, scanner)
	program := tea.NewProgram(model, tea.WithAltScreen())
	renderer.SetProgram(program)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller.Start(ctx)
	defer controller.Close()

	// A stored profile signs the panel in before the first frame.
	if active != nil && active.Token != "" {
		authMgr.SignInWithPersonalToken(active.Token)
	}

	logger.Log("MAIN: neonpane starting (api=%s)", baseURL)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}
