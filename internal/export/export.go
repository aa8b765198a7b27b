// Package export writes the current chat transcript to disk on explicit user
// request. The live transcript itself is never persisted.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docdeck/internal/session"
)

// WriteMarkdown renders the transcript as a markdown conversation with
// citations and writes it to path, creating parent directories as needed.
func WriteMarkdown(path string, turns []session.Turn) error {
	if len(turns) == 0 {
		return fmt.Errorf("nothing to export yet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Render(turns)), 0o644)
}

// Render produces the markdown body.
func Render(turns []session.Turn) string {
	var b strings.Builder
	b.WriteString("# docdeck transcript\n\n")
	b.WriteString(fmt.Sprintf("Exported %s\n\n", time.Now().Format(time.RFC1123)))

	for _, turn := range turns {
		switch turn.Role {
		case session.RoleUser:
			b.WriteString("## You\n\n")
		default:
			b.WriteString("## Assistant\n\n")
		}
		b.WriteString(strings.TrimSpace(turn.Content))
		b.WriteString("\n\n")
		if len(turn.Sources) > 0 {
			b.WriteString("Sources:\n\n")
			for _, src := range turn.Sources {
				b.WriteString(fmt.Sprintf("- %s\n", session.FormatSource(src)))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// DefaultPath builds a timestamped filename inside dir.
func DefaultPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("docdeck-%s.md", now.Format("20060102-150405")))
}
