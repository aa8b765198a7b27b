package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"docdeck/internal/tuitest"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"documents":[{"filename":"handbook.pdf","total_pages":10,"total_chunks":42}],"total_documents":1,"total_chunks":42}`))
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"The handbook covers onboarding.","sources":[{"source":null,"page":null}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDocdeckAnswersWithCitationPlaceholders(t *testing.T) {
	backend := fakeBackend(t)
	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "-no-alt-screen", "-endpoint", backend.URL},
		Dir:     t.TempDir(),
		Width:   110,
		Height:  34,
		Steps: []tuitest.Step{
			{Delay: 2 * time.Second},
			{Input: []byte("What does the handbook cover?")},
			{Input: tuitest.KeyEnter},
			{Delay: 2 * time.Second},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        20 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, needle := range []string{
		"Chat with your PDF knowledge base.",
		"The handbook covers onboarding.",
		"Unknown (page unknown)",
	} {
		if !rec.ContainsFrame(needle) {
			frame, _ := rec.FinalFrame()
			t.Fatalf("no frame contains %q\n---- final frame ----\n%s", needle, frame.Plain)
		}
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "docdeck-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
