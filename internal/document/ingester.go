package document

import (
	"context"
	"time"
	"unicode/utf8"
)

// Ingester turns an uploaded file into a processed or failed Document.
type Ingester struct {
	Extractor  Extractor
	Normalizer *Normalizer
	Now        func() time.Time
}

func NewIngester(extractor Extractor, normalizer *Normalizer) *Ingester {
	return &Ingester{
		Extractor:  extractor,
		Normalizer: normalizer,
		Now:        time.Now,
	}
}

// Pending returns the placeholder stored while a file is being extracted.
func (i *Ingester) Pending(fileName string) Document {
	return Document{
		FileName:   fileName,
		UploadedAt: i.Now().UTC(),
		Status:     StatusPending,
	}
}

// Ingest extracts and normalizes the text of pending. Failures are reported in the returned
// document rather than as an error so the caller can keep them for display.
func (i *Ingester) Ingest(ctx context.Context, pending Document, data []byte) Document {
	doc := pending
	text, err := i.read(ctx, pending.FileName, data)
	if err != nil {
		doc.Status = StatusFailed
		doc.Content = ""
		doc.Error = err.Error()
		return doc
	}

	doc.Status = StatusProcessed
	doc.Content = text
	doc.Error = ""
	return doc
}

func (i *Ingester) read(ctx context.Context, fileName string, data []byte) (string, error) {
	format, err := DetectFormat(fileName, data)
	if err != nil {
		return "", err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = i.Extractor.ExtractText(ctx, fileName, data)
		if err != nil {
			return "", err
		}
	default:
		if !utf8.Valid(data) {
			return "", ErrUnreadableDocument
		}
		raw = string(data)
	}
	return i.Normalizer.Normalize(raw, format)
}
