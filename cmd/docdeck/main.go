package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"docdeck/internal/api"
	"docdeck/internal/config"
	"docdeck/internal/registry"
	"docdeck/internal/session"
	"docdeck/internal/tui"
	"docdeck/internal/uploads"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Println("invalid configuration:", err)
		os.Exit(1)
	}

	client := api.New(api.Config{Endpoint: cfg.Endpoint})
	reg := registry.New(client)
	queue := uploads.NewQueue(uploads.Config{
		Uploader:  client,
		Refresher: reg,
	})
	sess := session.New()

	if len(cfg.AttachPaths) > 0 {
		if _, err := queue.Add(cfg.AttachPaths...); err != nil {
			sess.SetBanner("rejected: " + err.Error())
		}
	}

	opts := []tea.ProgramOption{}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Backend:   client,
			Registry:  reg,
			Queue:     queue,
			Session:   sess,
			ExportDir: cfg.ExportDir,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
