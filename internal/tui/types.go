package tui

type composerMode int

const (
	composerModeQuestion composerMode = iota
	composerModeAttach
)

const (
	composerQuestionPlaceholder = "Ask about your documents…"
	composerAttachPlaceholder   = "Path to a PDF to attach…"
)

const heroTagline = "Chat with your PDF knowledge base."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	assistantLabel            = "Deck"
	userLabel                 = "You"
)
