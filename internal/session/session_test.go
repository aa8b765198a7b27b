package session

import (
	"errors"
	"testing"

	"docdeck/internal/api"
)

func TestAskBlankQuestionsAreNoOps(t *testing.T) {
	t.Parallel()

	s := New()
	for _, input := range []string{"", "   ", "\t\n"} {
		if _, ok := s.Ask(input); ok {
			t.Fatalf("Ask(%q) should be refused", input)
		}
	}
	if len(s.Turns()) != 0 {
		t.Fatalf("transcript grew on blank input: %d turns", len(s.Turns()))
	}
	if s.State() != Idle {
		t.Fatalf("state = %v, want Idle", s.State())
	}
}

func TestAskAppendsUserTurnOptimistically(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetBanner("stale failure")

	question, ok := s.Ask("  What is X?  ")
	if !ok || question != "What is X?" {
		t.Fatalf("Ask returned (%q, %v)", question, ok)
	}
	turns := s.Turns()
	if len(turns) != 1 || turns[0].Role != RoleUser || turns[0].Content != "What is X?" {
		t.Fatalf("unexpected transcript: %#v", turns)
	}
	if s.State() != AwaitingAnswer {
		t.Fatalf("state = %v, want AwaitingAnswer", s.State())
	}
	if s.Banner() != "" {
		t.Fatal("asking should clear the previous banner")
	}
}

func TestSecondAskWhileAwaitingIsRefused(t *testing.T) {
	t.Parallel()

	s := New()
	if _, ok := s.Ask("first"); !ok {
		t.Fatal("first ask refused")
	}
	if _, ok := s.Ask("second"); ok {
		t.Fatal("second ask must be refused while the first is pending")
	}
	if got := len(s.Turns()); got != 1 {
		t.Fatalf("transcript reflects more than one pending exchange: %d turns", got)
	}

	s.ResolveAnswer("done", nil)
	if _, ok := s.Ask("second"); !ok {
		t.Fatal("ask should work again once the first exchange resolved")
	}
}

func TestResolveAnswerAppendsAssistantTurn(t *testing.T) {
	t.Parallel()

	s := New()
	s.Ask("q")
	page := 4
	name := "doc.pdf"
	s.ResolveAnswer("the answer", []api.Source{{Source: &name, Page: &page}})

	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	last := turns[1]
	if last.Role != RoleAssistant || last.Content != "the answer" || len(last.Sources) != 1 {
		t.Fatalf("unexpected assistant turn: %#v", last)
	}
	if s.State() != Idle {
		t.Fatalf("state = %v, want Idle", s.State())
	}
}

func TestResolveAnswerNormalizesNilSources(t *testing.T) {
	t.Parallel()

	s := New()
	s.Ask("q")
	s.ResolveAnswer("a", nil)
	if sources := s.Turns()[1].Sources; sources == nil || len(sources) != 0 {
		t.Fatalf("expected empty citation sequence, got %#v", sources)
	}
}

func TestResolveErrorSynthesizesTurnAndBanner(t *testing.T) {
	t.Parallel()

	s := New()
	s.Ask("What is X?")
	s.ResolveError(errors.New("backend unreachable: dial tcp refused"))

	turns := s.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript should grow by exactly 2 turns, got %d", len(turns))
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != errorTurnText {
		t.Fatalf("unexpected error turn: %#v", turns[1])
	}
	if len(turns[1].Sources) != 0 {
		t.Fatalf("error turn must carry no citations: %#v", turns[1].Sources)
	}
	if s.State() != Idle {
		t.Fatal("session stuck awaiting after a fault")
	}
	if s.Banner() == "" {
		t.Fatal("underlying detail should surface as a banner")
	}

	s.DismissBanner()
	if s.Banner() != "" {
		t.Fatal("banner should clear on dismiss")
	}
}

func TestFormatSource(t *testing.T) {
	t.Parallel()

	name := "report.pdf"
	blank := "  "
	page := 7

	tests := []struct {
		label string
		src   api.Source
		want  string
	}{
		{"both present", api.Source{Source: &name, Page: &page}, "report.pdf (page 7)"},
		{"missing page", api.Source{Source: &name}, "report.pdf (page unknown)"},
		{"missing source", api.Source{Page: &page}, "Unknown (page 7)"},
		{"both missing", api.Source{}, "Unknown (page unknown)"},
		{"blank source", api.Source{Source: &blank}, "Unknown (page unknown)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			if got := FormatSource(tt.src); got != tt.want {
				t.Fatalf("FormatSource = %q, want %q", got, tt.want)
			}
		})
	}
}
