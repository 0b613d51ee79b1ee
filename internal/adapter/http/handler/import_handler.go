package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// DefaultMaxUploadBytes bounds a CSV upload.
const DefaultMaxUploadBytes = 10 << 20

// ImportService runs bulk CSV imports.
type ImportService interface {
	Import(ctx context.Context, input usecase.ImportInput) (*domain.ImportResult, error)
}

// ImportHandler accepts CSV uploads.
type ImportHandler struct {
	importUC ImportService
	maxBytes int64
}

// NewImportHandler creates a new ImportHandler. maxBytes <= 0 selects
// DefaultMaxUploadBytes.
func NewImportHandler(importUC ImportService, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ImportHandler{importUC: importUC, maxBytes: maxBytes}
}

// Upload imports the CSV sent either as the multipart field "file" or as a
// text/csv body. Row failures are reported in the result, not as an error.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	body, closeBody, err := h.csvBody(r)
	if err != nil {
		if err = tooLarge(err); errors.Is(err, domain.ErrUploadTooLarge) {
			writeDomainError(w, "invalid upload", err)
			return
		}
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid upload", err.Error())
		return
	}
	defer closeBody()

	tenantID, actorID := scope(r)
	result, err := h.importUC.Import(r.Context(), usecase.ImportInput{
		Reader:   uploadReader{body},
		TenantID: tenantID,
		ActorID:  actorID,
		Kind:     domain.ImportKind(chi.URLParam(r, "kind")),
	})
	if err != nil {
		writeDomainError(w, "import failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ImportResultFromDomain(result))
}

func (h *ImportHandler) csvBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}

	return file, func() {
		file.Close()
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}, nil
}

// uploadReader reports a body cut off by http.MaxBytesReader as
// domain.ErrUploadTooLarge.
type uploadReader struct {
	r io.Reader
}

func (u uploadReader) Read(p []byte) (int, error) {
	n, err := u.r.Read(p)
	return n, tooLarge(err)
}

func tooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w (%d bytes)", domain.ErrUploadTooLarge, maxErr.Limit)
	}
	return err
}
