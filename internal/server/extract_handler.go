package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/palimpseste/palimpseste/internal/document"
)

// ExtractPath is where ExtractHandler is mounted.
const ExtractPath = "/api/document/extract"

const maxUploadSize = 32 << 20

// ExtractHandler serves the text of a PDF posted as the multipart field "file".
type ExtractHandler struct {
	extractor document.Extractor
}

func NewExtractHandler(extractor document.Extractor) *ExtractHandler {
	return &ExtractHandler{extractor: extractor}
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeExtractResponse(w, http.StatusMethodNotAllowed, document.ExtractResponse{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		message := "no file uploaded"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "file too large"
		}
		writeExtractResponse(w, http.StatusBadRequest, document.ExtractResponse{Error: message})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeExtractResponse(w, http.StatusBadRequest, document.ExtractResponse{Error: "cannot read the uploaded file"})
		return
	}

	text, err := h.extractor.ExtractText(r.Context(), header.Filename, data)
	if err != nil {
		slog.Warn("text extraction failed", "file", header.Filename, "error", err)
		writeExtractResponse(w, http.StatusUnprocessableEntity, document.ExtractResponse{Error: err.Error()})
		return
	}
	writeExtractResponse(w, http.StatusOK, document.ExtractResponse{Text: text})
}

func writeExtractResponse(w http.ResponseWriter, status int, body document.ExtractResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write the extraction response", "error", err)
	}
}
