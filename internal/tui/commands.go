package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"docdeck/internal/api"
	"docdeck/internal/export"
	"docdeck/internal/registry"
	"docdeck/internal/session"
	"docdeck/internal/uploads"
)

type healthResultMsg struct {
	status api.HealthStatus
	err    error
}

type documentsResultMsg struct {
	docs []api.Document
	err  error
}

type batchResultMsg struct {
	result *uploads.BatchResult
}

type answerResultMsg struct {
	answer api.Answer
	err    error
}

type exportResultMsg struct {
	path string
	err  error
}

func healthJob(backend Backend) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()
		status, err := backend.Health(ctx)
		return healthResultMsg{status: status, err: err}, err
	}
}

func refreshDocumentsJob(reg *registry.Registry) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		docs, err := reg.Refresh(ctx)
		return documentsResultMsg{docs: docs, err: err}, err
	}
}

func submitBatchJob(queue *uploads.Queue) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		// No per-batch deadline: each upload request is bounded by the
		// client's own timeout and candidates run one at a time.
		return batchResultMsg{result: queue.Submit(parent)}, nil
	}
}

func askQuestionJob(backend Backend, question string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, api.RequestTimeout)
		defer cancel()
		answer, err := backend.Query(ctx, question)
		return answerResultMsg{answer: answer, err: err}, err
	}
}

func exportTranscriptJob(path string, turns []session.Turn) jobRunner {
	toExport := append([]session.Turn(nil), turns...)
	return func(parent context.Context) (tea.Msg, error) {
		if err := export.WriteMarkdown(path, toExport); err != nil {
			return exportResultMsg{err: err}, err
		}
		return exportResultMsg{path: path}, nil
	}
}
