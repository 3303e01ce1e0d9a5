// Package document turns uploaded course files into normalized text ready for segmentation.
package document

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyDocument      = errors.New("the document contains no usable text after extraction")
	ErrUnreadableDocument = errors.New("the extracted text is mostly control characters")
	ErrUnsupportedFormat  = errors.New("unsupported format, use a PDF or a text file")
)

// Status is the processing state of an uploaded document.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Format is the kind of file a document was uploaded as.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// Document is the source file of a track and its extracted text.
type Document struct {
	FileName   string    `json:"fileName" yaml:"file_name"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploaded_at"`
	Status     Status    `json:"status" yaml:"status"`
	Content    string    `json:"content" yaml:"content"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Ready reports whether the document can be segmented.
func (d *Document) Ready() bool {
	return d != nil && d.Status == StatusProcessed
}

// DetectFormat decides whether data is a PDF or plain text from its content and file name.
func DetectFormat(fileName string, data []byte) (Format, error) {
	detected := mimetype.Detect(data)
	extension := strings.ToLower(filepath.Ext(fileName))

	switch {
	case detected.Is("application/pdf") || extension == ".pdf":
		return FormatPDF, nil
	case strings.HasPrefix(detected.String(), "text/") || extension == ".txt" || extension == ".md":
		return FormatText, nil
	}
	return "", ErrUnsupportedFormat
}
