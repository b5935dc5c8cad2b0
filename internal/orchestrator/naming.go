package orchestrator

import (
	"fmt"

	"github.com/local/pdfchunker/internal/planner"
)

// chunkFileName builds the chunk file name. Page numbers in the name
// are 1-based and inclusive so they match what a PDF viewer shows.
func chunkFileName(base string, num int, c planner.Chunk) string {
	return fmt.Sprintf("%s_chunk%03d_pages%03d-%03d.pdf", base, num, c.Start+1, c.End)
}

// FormatSize renders a byte count for logs and summaries.
func FormatSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
