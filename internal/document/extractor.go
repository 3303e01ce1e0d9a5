package document

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

// Extractor reads the text out of a PDF file.
type Extractor interface {
	ExtractText(ctx context.Context, fileName string, data []byte) (string, error)
}

// LocalExtractor extracts PDF text in process.
type LocalExtractor struct{}

func (LocalExtractor) ExtractText(_ context.Context, _ string, data []byte) (string, error) {
	return ExtractPDFText(data)
}

// ExtractResponse is the body exchanged with an extraction service.
type ExtractResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// RemoteExtractor posts files to an extraction service as the multipart field "file".
type RemoteExtractor struct {
	client           *resty.Client
	url              string
	maxRetryAttempts uint
}

func NewRemoteExtractor(url string, timeout time.Duration, retryAttempts uint) *RemoteExtractor {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &RemoteExtractor{
		client:           client,
		url:              url,
		maxRetryAttempts: retryAttempts,
	}
}

// statusError is a non-2xx answer from the extraction service.
type statusError struct {
	statusCode int
	message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("extraction service returned %d: %s", e.statusCode, e.message)
}

func (e *RemoteExtractor) ExtractText(ctx context.Context, fileName string, data []byte) (string, error) {
	var text string
	if err := retry.Do(
		func() error {
			result, err := e.extract(ctx, fileName, data)
			if err != nil {
				if statusErr, ok := err.(*statusError); ok && statusErr.statusCode < http.StatusInternalServerError {
					return retry.Unrecoverable(err)
				}
				return err
			}
			text = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.maxRetryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return "", err
	}
	return text, nil
}

func (e *RemoteExtractor) extract(ctx context.Context, fileName string, data []byte) (string, error) {
	var result ExtractResponse
	var failure ExtractResponse
	res, err := e.client.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetResult(&result).
		SetError(&failure).
		Post(e.url)
	if err != nil {
		return "", fmt.Errorf("post %s to extraction service: %w", fileName, err)
	}
	if res.IsError() {
		message := failure.Error
		if message == "" {
			message = string(res.Body())
		}
		return "", &statusError{statusCode: res.StatusCode(), message: message}
	}
	return result.Text, nil
}
