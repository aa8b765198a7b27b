package guide

// Step represents one actionable recommendation shown before the first
// exchange.
type Step struct {
	Title       string
	Description string
}

// Build returns the quickstart checklist rendered while the transcript is
// still empty.
func Build() []Step {
	return []Step{
		{
			Title:       "Attach PDFs",
			Description: "Press Ctrl+A and type the path to a PDF (10 MiB max per file). Each accepted file joins the pending queue; Ctrl+X drops the most recent one.",
		},
		{
			Title:       "Submit the batch",
			Description: "Press Ctrl+U to upload pending files one at a time. If a file fails, everything after it stays queued so you can retry or remove it.",
		},
		{
			Title:       "Check the library",
			Description: "Press Ctrl+D to see which documents the knowledge base has indexed, with page and chunk counts. Ctrl+R refreshes the list.",
		},
		{
			Title:       "Ask away",
			Description: "Type a question and press Enter. Answers cite their source documents and pages; one question runs at a time.",
		},
		{
			Title:       "Keep what matters",
			Description: "Press Ctrl+S to export the conversation, citations included, as a markdown file.",
		},
	}
}
