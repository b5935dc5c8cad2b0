// Package planner decides where chunk boundaries fall so that each
// chunk's serialized size tracks a target byte budget. Page sizes are
// non-additive (shared fonts, images, xref tables), so the planner asks
// a Measurer for the exact cumulative size after every tentative page
// instead of estimating from per-page sizes.
package planner

import (
	"context"
	"fmt"
)

// Measurer reports the exact serialized byte size of a page subset.
// pdf.Document satisfies this.
type Measurer interface {
	MeasurePages(ctx context.Context, pages []int) (int64, error)
}

// Chunk is a half-open 0-based page range [Start, End). Size is the
// measured serialized size of the chunk's page set.
type Chunk struct {
	Start int
	End   int
	Size  int64
}

// Pages returns the number of pages in the chunk.
func (c Chunk) Pages() int { return c.End - c.Start }

func (c Chunk) String() string {
	return fmt.Sprintf("pages %d-%d", c.Start+1, c.End)
}

// Observer receives synchronous progress callbacks. Fields may be nil.
// Callbacks run inline on the planning goroutine and must not block;
// callers needing responsiveness run Plan from their own goroutine.
type Observer struct {
	// PageAccepted fires after a page is committed to the open chunk.
	PageAccepted func(page int, chunkSize int64)
	// ChunkClosed fires after a chunk is finalized.
	ChunkClosed func(c Chunk)
}

func (o Observer) pageAccepted(page int, size int64) {
	if o.PageAccepted != nil {
		o.PageAccepted(page, size)
	}
}

func (o Observer) chunkClosed(c Chunk) {
	if o.ChunkClosed != nil {
		o.ChunkClosed(c)
	}
}

// Planner produces ordered chunk lists for one measurer.
type Planner struct {
	m   Measurer
	obs Observer
}

// New returns a Planner measuring through m and reporting to obs.
func New(m Measurer, obs Observer) *Planner {
	return &Planner{m: m, obs: obs}
}

// Plan partitions [0, totalPages) into contiguous chunks whose measured
// sizes approximate targetBytes.
//
// Greedy forward scan with one-page lookahead: each page is tentatively
// added and the resulting set measured. Once the measured size passes
// the target, the chunk keeps the page only if doing so leaves a
// strictly smaller absolute error than stopping; on equal error it
// stops, biasing toward undershoot. A chunk is never empty: the first
// page of a chunk is always accepted, so a page that alone exceeds the
// target becomes its own one-page chunk and the scan always advances.
//
// Cancellation is checked once per measurement. On cancellation or
// measurement failure no partial list is returned.
func (p *Planner) Plan(ctx context.Context, totalPages int, targetBytes int64) ([]Chunk, error) {
	if totalPages <= 0 {
		return nil, fmt.Errorf("plan: document has no pages")
	}
	if targetBytes <= 0 {
		return nil, fmt.Errorf("plan: target must be positive, got %d", targetBytes)
	}

	var chunks []Chunk
	current := 0
	for current < totalPages {
		start := current
		var chunkSize int64
		for current < totalPages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			testSize, err := p.m.MeasurePages(ctx, pageRange(start, current+1))
			if err != nil {
				return nil, fmt.Errorf("plan: %w", err)
			}
			if current > start && testSize > targetBytes {
				errWithout := absDiff(chunkSize, targetBytes)
				errWith := absDiff(testSize, targetBytes)
				if errWithout <= errWith {
					break
				}
			}
			chunkSize = testSize
			current++
			p.obs.pageAccepted(current-1, chunkSize)
			if testSize >= targetBytes {
				break
			}
		}
		c := Chunk{Start: start, End: current, Size: chunkSize}
		chunks = append(chunks, c)
		p.obs.chunkClosed(c)
	}
	return chunks, nil
}

func pageRange(start, end int) []int {
	pages := make([]int, end-start)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
