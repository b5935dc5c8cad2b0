package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result is the outcome of compressing one chunk artifact.
type Result struct {
	Path         string
	Size         int64
	OriginalSize int64
}

// Ratio returns the size reduction as a percentage of the original.
func (r Result) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(r.Size)/float64(r.OriginalSize)) * 100
}

// Compressor dispatches chunk files to a codec selected by id.
type Compressor struct {
	reg *Registry
}

// NewCompressor returns a Compressor dispatching through reg.
func NewCompressor(reg *Registry) *Compressor {
	return &Compressor{reg: reg}
}

// OutputPath derives the artifact path for srcPath under c: the ".pdf"
// suffix is replaced by the codec's extension.
func OutputPath(srcPath string, c Codec) string {
	return strings.TrimSuffix(srcPath, ".pdf") + c.Extension()
}

// Compress runs srcPath through the codec identified by codecID and
// returns the output path and its on-disk size. The input file is never
// mutated. For the store-only codec the input is the final artifact:
// nothing is written and the input path/size are returned as-is.
func (cp *Compressor) Compress(srcPath, codecID string) (Result, error) {
	c, err := cp.reg.Get(codecID)
	if err != nil {
		return Result{}, err
	}

	fi, err := os.Stat(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat chunk: %w", err)
	}

	if codecID == None {
		return Result{Path: srcPath, Size: fi.Size(), OriginalSize: fi.Size()}, nil
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("open chunk: %w", err)
	}
	defer in.Close()

	dstPath := OutputPath(srcPath, c)
	out, err := os.Create(dstPath)
	if err != nil {
		return Result{}, fmt.Errorf("create artifact: %w", err)
	}
	if err := c.Compress(out, in, filepath.Base(srcPath), fi.Size()); err != nil {
		out.Close()
		os.Remove(dstPath)
		return Result{}, fmt.Errorf("codec %s: %w", codecID, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dstPath)
		return Result{}, fmt.Errorf("close artifact: %w", err)
	}

	ofi, err := os.Stat(dstPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat artifact: %w", err)
	}
	return Result{Path: dstPath, Size: ofi.Size(), OriginalSize: fi.Size()}, nil
}
