package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"docdeck/internal/api"
	"docdeck/internal/export"
	"docdeck/internal/registry"
	"docdeck/internal/session"
	"docdeck/internal/uploads"
)

// Backend is the slice of the api client the UI drives directly; uploads and
// registry refreshes go through their own controllers.
type Backend interface {
	Health(ctx context.Context) (api.HealthStatus, error)
	Query(ctx context.Context, question string) (api.Answer, error)
}

// Config wires the controllers into the TUI program.
type Config struct {
	Backend   Backend
	Registry  *registry.Registry
	Queue     *uploads.Queue
	Session   *session.Session
	ExportDir string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	composer := textinput.New()
	composer.Placeholder = composerQuestionPlaceholder
	composer.Focus()
	composer.CharLimit = 400
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:          cfg,
		jobs:            newJobBus(),
		composer:        composer,
		composerMode:    composerModeQuestion,
		spinner:         spin,
		viewport:        vp,
		transcriptDirty: true,
		infoMessage:     "Checking the knowledge base…",
	}
}

type model struct {
	config Config
	jobs   *jobBus

	composer     textinput.Model
	composerMode composerMode
	spinner      spinner.Model
	viewport     viewport.Model

	mdRenderer *glamour.TermRenderer

	showDocuments   bool
	transcriptDirty bool
	infoMessage     string
	healthChecked   bool
	healthy         bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.jobs.Start(jobKindHealth, healthJob(m.config.Backend)),
		m.jobs.Start(jobKindRefresh, refreshDocumentsJob(m.config.Registry)),
	)
}

// busy reports whether any network activity is in flight, which drives the
// spinner.
func (m *model) busy() bool {
	return m.config.Session.State() == session.AwaitingAnswer || m.config.Queue.Uploading()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() || !m.healthChecked {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m.handleEsc()
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case jobSignalMsg:
		return m, nil

	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)

	case healthResultMsg:
		m.healthChecked = true
		if msg.err != nil {
			m.healthy = false
			m.config.Session.SetBanner(fmt.Sprintf("backend not reachable: %v", msg.err))
			m.infoMessage = "Start the backend, then press Ctrl+R to reconnect."
			return m, nil
		}
		m.healthy = true
		m.infoMessage = "Connected. Attach PDFs with Ctrl+A or ask a question."
		return m, nil

	case documentsResultMsg:
		if msg.err != nil {
			// Retryable; the rest of the UI keeps working off the old snapshot.
			m.infoMessage = "Couldn't refresh the library. Ctrl+R retries."
			return m, nil
		}
		if !m.healthy {
			// A successful listing proves the backend came back.
			m.healthy = true
			m.healthChecked = true
		}
		m.infoMessage = fmt.Sprintf("Library holds %d document(s).", len(msg.docs))
		return m, nil

	case batchResultMsg:
		return m.handleBatchResult(msg)

	case answerResultMsg:
		if msg.err != nil {
			m.config.Session.ResolveError(msg.err)
			m.infoMessage = "That didn't go through. Ask again when ready."
		} else {
			m.config.Session.ResolveAnswer(msg.answer.Answer, msg.answer.Sources)
			m.infoMessage = "Answer ready. Ask a follow-up or export with Ctrl+S."
		}
		m.transcriptDirty = true
		return m, nil

	case exportResultMsg:
		if msg.err != nil {
			m.config.Session.SetBanner(fmt.Sprintf("export failed: %v", msg.err))
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Transcript exported to %s", msg.path)
		return m, nil
	}
	return m, nil
}

func (m *model) handleEsc() (tea.Model, tea.Cmd) {
	if m.config.Session.Banner() != "" {
		m.config.Session.DismissBanner()
		return m, nil
	}
	if m.composerMode == composerModeAttach {
		m.setComposerMode(composerModeQuestion)
		m.infoMessage = "Back to questions."
		return m, nil
	}
	if strings.TrimSpace(m.composer.Value()) != "" {
		m.composer.SetValue("")
		return m, nil
	}
	return m, tea.Quit
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+a":
		m.setComposerMode(composerModeAttach)
		m.infoMessage = "Attach mode: type a PDF path and press Enter. Esc goes back."
		return m, nil
	case "ctrl+u":
		return m.startBatchSubmit()
	case "ctrl+r":
		m.infoMessage = "Refreshing the library…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindRefresh, refreshDocumentsJob(m.config.Registry)))
	case "ctrl+d":
		m.showDocuments = !m.showDocuments
		return m, nil
	case "ctrl+x":
		m.dropLastCandidate()
		return m, nil
	case "ctrl+s":
		return m.startExport()
	case "enter":
		return m.submitComposer()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) setComposerMode(mode composerMode) {
	m.composerMode = mode
	m.composer.SetValue("")
	if mode == composerModeAttach {
		m.composer.Placeholder = composerAttachPlaceholder
	} else {
		m.composer.Placeholder = composerQuestionPlaceholder
	}
	m.composer.Focus()
}

func (m *model) submitComposer() (tea.Model, tea.Cmd) {
	value := m.composer.Value()
	if m.composerMode == composerModeAttach {
		return m.attachPath(value)
	}

	question, ok := m.config.Session.Ask(value)
	if !ok {
		if strings.TrimSpace(value) != "" {
			m.infoMessage = "Still answering the previous question…"
		}
		return m, nil
	}
	m.composer.SetValue("")
	m.transcriptDirty = true
	m.infoMessage = "Thinking…"
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindQuestion, askQuestionJob(m.config.Backend, question)))
}

func (m *model) attachPath(value string) (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(value)
	if path == "" {
		m.infoMessage = "Type a PDF path, or press Esc to go back."
		return m, nil
	}
	m.composer.SetValue("")

	added, err := m.config.Queue.Add(path)
	if err != nil {
		m.config.Session.SetBanner("rejected: " + err.Error())
	}
	if len(added) > 0 {
		m.infoMessage = fmt.Sprintf("Attached %s (%d pending). Ctrl+U uploads the batch.",
			added[len(added)-1].Name, len(m.config.Queue.Pending()))
	}
	return m, nil
}

func (m *model) startBatchSubmit() (tea.Model, tea.Cmd) {
	if m.config.Queue.Uploading() {
		m.infoMessage = "An upload batch is already running."
		return m, nil
	}
	pending := m.config.Queue.Pending()
	if len(pending) == 0 {
		m.infoMessage = "Nothing pending. Attach PDFs with Ctrl+A first."
		return m, nil
	}
	m.infoMessage = fmt.Sprintf("Uploading %d file(s), one at a time…", len(pending))
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindUpload, submitBatchJob(m.config.Queue)))
}

func (m *model) handleBatchResult(msg batchResultMsg) (tea.Model, tea.Cmd) {
	res := msg.result
	if res == nil {
		return m, nil
	}
	switch {
	case res.Failed != nil && len(res.Uploaded) == 0:
		m.config.Session.SetBanner(fmt.Sprintf("upload stopped at %s: %v", res.Failed.Name, res.Failed.Err))
		m.infoMessage = "No file made it. The batch is kept for retry or removal."
	case res.Failed != nil:
		m.config.Session.SetBanner(fmt.Sprintf("upload stopped at %s: %v", res.Failed.Name, res.Failed.Err))
		m.infoMessage = fmt.Sprintf("Uploaded %d file(s) before the failure; %d kept pending.",
			len(res.Uploaded), res.Remaining)
	default:
		m.infoMessage = fmt.Sprintf("Uploaded %d document(s).", len(res.Uploaded))
	}
	if res.RefreshErr != nil {
		m.infoMessage += " Library refresh failed; Ctrl+R retries."
	}
	return m, nil
}

func (m *model) dropLastCandidate() {
	if m.config.Queue.Uploading() {
		m.infoMessage = "Can't edit the queue while uploading."
		return
	}
	pending := m.config.Queue.Pending()
	if len(pending) == 0 {
		m.infoMessage = "The pending queue is empty."
		return
	}
	last := pending[len(pending)-1]
	m.config.Queue.Remove(last)
	m.infoMessage = fmt.Sprintf("Removed %s (%d pending).", last.Name, len(pending)-1)
}

func (m *model) startExport() (tea.Model, tea.Cmd) {
	turns := m.config.Session.Turns()
	if len(turns) == 0 {
		m.infoMessage = "Nothing to export yet. Ask something first."
		return m, nil
	}
	path := export.DefaultPath(m.config.ExportDir, time.Now())
	return m, m.jobs.Start(jobKindExport, exportTranscriptJob(path, turns))
}

func (m *model) resize(width, height int) {
	newWidth := width - viewportHorizontalPadding
	if newWidth < minViewportWidth {
		newWidth = minViewportWidth
	}
	m.viewport.Width = newWidth
	vh := height - 12
	if vh < 5 {
		vh = 5
	}
	m.viewport.Height = vh
	m.composer.Width = newWidth
	m.mdRenderer = nil // wrap width changed
	m.transcriptDirty = true
}
