// Package session holds the chat transcript for the active process and the
// single-flight state machine around asking questions. Nothing here touches
// the network: the UI begins an exchange with Ask, performs the round trip,
// and settles it with ResolveAnswer or ResolveError, so the optimistic user
// turn and the confirmed assistant turn are two explicit phases.
package session

import (
	"fmt"
	"strings"
	"time"

	"docdeck/internal/api"
)

// Role tags one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// State is the session's single-flight flag.
type State int

const (
	Idle State = iota
	AwaitingAnswer
)

// Turn is one transcript entry. Turns are immutable once appended and the
// transcript is append-only; it lives in memory for the current process only.
type Turn struct {
	Role    Role
	Content string
	Sources []api.Source
	At      time.Time
}

const errorTurnText = "Sorry, something went wrong answering that. Please try again."

// Session is confined to the UI update loop; it needs no locking.
type Session struct {
	turns  []Turn
	state  State
	banner string
}

func New() *Session {
	return &Session{}
}

// Ask begins an exchange. It trims the question and refuses (returning false)
// when the result is empty or another question is already in flight. On
// acceptance the user turn is appended immediately, before any network round
// trip, the banner is cleared, and the session awaits an answer.
func (s *Session) Ask(question string) (string, bool) {
	question = strings.TrimSpace(question)
	if question == "" || s.state == AwaitingAnswer {
		return "", false
	}
	s.turns = append(s.turns, Turn{Role: RoleUser, Content: question, At: time.Now()})
	s.state = AwaitingAnswer
	s.banner = ""
	return question, true
}

// ResolveAnswer settles the in-flight exchange with the backend's answer.
func (s *Session) ResolveAnswer(answer string, sources []api.Source) {
	if sources == nil {
		sources = []api.Source{}
	}
	s.turns = append(s.turns, Turn{Role: RoleAssistant, Content: answer, Sources: sources, At: time.Now()})
	s.state = Idle
}

// ResolveError settles the in-flight exchange after a transport or backend
// fault. The transcript gets a fixed assistant turn so it is never left
// mid-question, the underlying detail goes to the dismissable banner, and the
// session returns to Idle so it can never stay stuck awaiting an answer.
func (s *Session) ResolveError(err error) {
	s.turns = append(s.turns, Turn{Role: RoleAssistant, Content: errorTurnText, Sources: []api.Source{}, At: time.Now()})
	if err != nil {
		s.banner = err.Error()
	}
	s.state = Idle
}

// Turns returns a copy of the transcript.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) State() State {
	return s.state
}

// Banner returns the current error banner, empty when dismissed.
func (s *Session) Banner() string {
	return s.banner
}

func (s *Session) DismissBanner() {
	s.banner = ""
}

// SetBanner surfaces a failure that happened outside the ask cycle, such as a
// registry refresh error.
func (s *Session) SetBanner(detail string) {
	s.banner = detail
}

// FormatSource renders one citation. Missing fields render as placeholders
// rather than being omitted or left blank.
func FormatSource(src api.Source) string {
	name := "Unknown"
	if src.Source != nil && strings.TrimSpace(*src.Source) != "" {
		name = *src.Source
	}
	page := "page unknown"
	if src.Page != nil {
		page = fmt.Sprintf("page %d", *src.Page)
	}
	return fmt.Sprintf("%s (%s)", name, page)
}
