package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/local/pdfchunker/internal/codec"
	"github.com/local/pdfchunker/internal/optimizer"
	"github.com/local/pdfchunker/internal/planner"
)

// fakeDoc implements document with fixed per-page sizes. WriteRange
// materializes real files so the compress/cleanup path runs unchanged.
type fakeDoc struct {
	name      string
	pages     []int64
	failStart int // WriteRange fails for the chunk starting here; -1 disables
}

func (d *fakeDoc) Name() string   { return d.name }
func (d *fakeDoc) PageCount() int { return len(d.pages) }
func (d *fakeDoc) Size() int64    { return d.sum(0, len(d.pages)) }

func (d *fakeDoc) sum(start, end int) int64 {
	var total int64
	for _, s := range d.pages[start:end] {
		total += s
	}
	return total
}

func (d *fakeDoc) MeasurePages(ctx context.Context, pages []int) (int64, error) {
	var total int64
	for _, p := range pages {
		total += d.pages[p]
	}
	return total, nil
}

func (d *fakeDoc) WriteRange(start, end int, path string) (int64, error) {
	if start == d.failStart {
		return 0, errors.New("page tree encode failed")
	}
	data := bytes.Repeat([]byte("x"), int(d.sum(start, end)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// newTestOrchestrator swaps the document loader for doc; optimization
// stays the real pass until a test overrides it.
func newTestOrchestrator(doc *fakeDoc) *Orchestrator {
	o := New(codec.NewRegistry())
	o.load = func(path string) (document, error) { return doc, nil }
	return o
}

// writeInput creates a file the magic-byte guard accepts as PDF.
func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDiscardsOptimizationBelowThreshold(t *testing.T) {
	orig := &fakeDoc{name: "report", pages: []int64{100, 100}, failStart: -1}
	shrunk := &fakeDoc{name: "report", pages: []int64{100}, failStart: -1}
	o := newTestOrchestrator(orig)
	o.optimize = func(ctx context.Context, doc document, opts optimizer.Options, progress optimizer.Progress) (document, optimizer.Stats, error) {
		return shrunk, optimizer.Stats{OriginalSize: 10 << 20, FinalSize: 10433331, ReductionPercent: 0.5}, nil
	}

	sum, err := o.Run(context.Background(), Config{
		InputPath:   writeInput(t),
		TargetBytes: 1000,
		CodecID:     codec.None,
		OutputDir:   t.TempDir(),
		Optimize:    &optimizer.Options{CompressStreams: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Optimized {
		t.Error("a 0.5% reduction is below the 1% default and should be discarded")
	}
	if sum.OptimizeStats != nil {
		t.Errorf("discarded optimization should not report stats, got %+v", sum.OptimizeStats)
	}
	if sum.TotalPages != orig.PageCount() {
		t.Errorf("planning should use the original document: TotalPages = %d, want %d",
			sum.TotalPages, orig.PageCount())
	}
}

func TestRunAppliesOptimizationAboveThreshold(t *testing.T) {
	orig := &fakeDoc{name: "report", pages: []int64{100, 100}, failStart: -1}
	shrunk := &fakeDoc{name: "report", pages: []int64{120}, failStart: -1}
	o := newTestOrchestrator(orig)
	o.optimize = func(ctx context.Context, doc document, opts optimizer.Options, progress optimizer.Progress) (document, optimizer.Stats, error) {
		return shrunk, optimizer.Stats{OriginalSize: 200, FinalSize: 120, ReductionPercent: 40}, nil
	}

	sum, err := o.Run(context.Background(), Config{
		InputPath:   writeInput(t),
		TargetBytes: 1000,
		CodecID:     codec.None,
		OutputDir:   t.TempDir(),
		Optimize:    &optimizer.Options{CompressStreams: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sum.Optimized || sum.OptimizeStats == nil {
		t.Fatal("above-threshold optimization should be applied and reported")
	}
	if sum.TotalPages != shrunk.PageCount() {
		t.Errorf("planning should use the optimized document: TotalPages = %d, want %d",
			sum.TotalPages, shrunk.PageCount())
	}
}

func TestRunFallsBackWhenOptimizationFails(t *testing.T) {
	orig := &fakeDoc{name: "report", pages: []int64{100, 100}, failStart: -1}
	o := newTestOrchestrator(orig)
	o.optimize = func(ctx context.Context, doc document, opts optimizer.Options, progress optimizer.Progress) (document, optimizer.Stats, error) {
		return nil, optimizer.Stats{}, &optimizer.OptimizationError{Err: errors.New("broken xref")}
	}

	sum, err := o.Run(context.Background(), Config{
		InputPath:   writeInput(t),
		TargetBytes: 1000,
		CodecID:     codec.None,
		OutputDir:   t.TempDir(),
		Optimize:    &optimizer.Options{CompressStreams: true},
	})
	if err != nil {
		t.Fatalf("Run should survive a failed optimization: %v", err)
	}
	if sum.Optimized {
		t.Error("failed optimization must not be marked applied")
	}
	if sum.Failed != 0 || len(sum.Chunks) == 0 {
		t.Errorf("run should complete against the original document, got %+v", sum)
	}
}

func TestRunIsolatesChunkFailures(t *testing.T) {
	// Each 100-byte page meets the 100-byte target alone, giving three
	// single-page chunks; the middle one fails to write.
	doc := &fakeDoc{name: "report", pages: []int64{100, 100, 100}, failStart: 1}
	o := newTestOrchestrator(doc)
	outDir := t.TempDir()

	sum, err := o.Run(context.Background(), Config{
		InputPath:   writeInput(t),
		TargetBytes: 100,
		CodecID:     codec.None,
		OutputDir:   outDir,
	})
	if err != nil {
		t.Fatalf("per-chunk failures must not abort the run: %v", err)
	}
	if len(sum.Chunks) != 3 {
		t.Fatalf("got %d chunk reports, want 3", len(sum.Chunks))
	}
	if sum.Failed != 1 {
		t.Errorf("Failed = %d, want 1", sum.Failed)
	}
	if sum.Chunks[1].Err == nil {
		t.Error("middle chunk should report its write error")
	}
	for _, i := range []int{0, 2} {
		r := sum.Chunks[i]
		if r.Err != nil {
			t.Errorf("chunk %d should succeed, got %v", i, r.Err)
		}
		if _, err := os.Stat(r.ArtifactPath); err != nil {
			t.Errorf("chunk %d artifact missing: %v", i, err)
		}
	}
	if sum.TotalCompressed != 200 {
		t.Errorf("TotalCompressed = %d, want 200 (failed chunk excluded)", sum.TotalCompressed)
	}
}

func TestChunkFileName(t *testing.T) {
	cases := []struct {
		num  int
		c    planner.Chunk
		want string
	}{
		{1, planner.Chunk{Start: 0, End: 5}, "report_chunk001_pages001-005.pdf"},
		{2, planner.Chunk{Start: 5, End: 6}, "report_chunk002_pages006-006.pdf"},
		{12, planner.Chunk{Start: 99, End: 150}, "report_chunk012_pages100-150.pdf"},
	}
	for _, tc := range cases {
		if got := chunkFileName("report", tc.num, tc.c); got != tc.want {
			t.Errorf("chunkFileName(%d, %+v) = %q, want %q", tc.num, tc.c, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.00 MB"},
		{int64(2.5 * 1024 * 1024), "2.50 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.n); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestCleanupTemps(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "doc_chunk001_pages001-005.pdf.tmp")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "doc_chunk002_pages006-010.pdf.tmp")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	finished := filepath.Join(dir, "doc_chunk003_pages011-015.pdf")
	if err := os.WriteFile(finished, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	CleanupTemps(dir, time.Hour)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file should have been removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh temp file should survive cleanup")
	}
	if _, err := os.Stat(finished); err != nil {
		t.Error("finished chunk should survive cleanup")
	}
}
