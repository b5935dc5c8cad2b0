// Package filetype validates pipeline input using magic bytes rather
// than trusting file extensions.
package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Info describes a detected file type.
type Info struct {
	MIMEType  string
	Extension string
	IsPDF     bool
}

// Detect inspects the file's magic bytes.
func Detect(path string) (*Info, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect file type: %w", err)
	}
	info := &Info{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is("application/pdf"),
	}
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", path).Msg("detected file type")
	return info, nil
}

// EnsurePDF returns an error unless the file at path is a PDF.
func EnsurePDF(path string) error {
	info, err := Detect(path)
	if err != nil {
		return err
	}
	if !info.IsPDF {
		return fmt.Errorf("unsupported input %s: detected %s, need application/pdf", path, info.MIMEType)
	}
	return nil
}
