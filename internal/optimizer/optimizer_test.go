package optimizer

import (
	"errors"
	"math"
	"testing"
)

func TestReductionPercent(t *testing.T) {
	cases := []struct {
		original, final int64
		want            float64
	}{
		{100, 50, 50},
		{100, 100, 0},
		{1000, 995, 0.5},
		{0, 10, 0},
		{100, 120, -20},
	}
	for _, tc := range cases {
		got := reductionPercent(tc.original, tc.final)
		// Float division is inexact; compare within a tolerance.
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("reductionPercent(%d, %d) = %v, want %v", tc.original, tc.final, got, tc.want)
		}
	}
}

func TestSkippedOptions(t *testing.T) {
	if got := skippedOptions(Options{CompressStreams: true}); len(got) != 0 {
		t.Errorf("no unsupported options requested, got %v", got)
	}
	got := skippedOptions(Options{CompressImages: true, RemoveMetadata: true})
	want := []string{"compress_images", "remove_metadata"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("skippedOptions = %v, want %v", got, want)
	}
}

func TestOptimizationErrorUnwraps(t *testing.T) {
	cause := errors.New("broken xref")
	err := &OptimizationError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("OptimizationError should unwrap to its cause")
	}
}
