package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/extract"
	"github.com/aoperat/centumbob/internal/llm"
	menusvc "github.com/aoperat/centumbob/internal/services/menu"
	"github.com/aoperat/centumbob/internal/viewer"
)

const (
	// multipart overhead on top of the image limit
	formSlack     = 1 << 20
	maxFormMemory = 32 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	imagePathPrefix = "/api/images/path/"
)

var errNoImage = fmt.Errorf("image file is required: %w", common.ErrInvalidInput)

// loadedMenu is a stored record plus the URL its image is served from.
type loadedMenu struct {
	*entity.MenuRecord
	ImageURL *string `json:"imageUrl"`
}

// analyzeStatus maps extraction failures: missing input 400, bad format 415, missing OCR or
// credentials 503, model failures 502.
func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrNoImage), errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrImageFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrOCRUnavailable), errors.Is(err, llm.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, mime, _, err := s.readImagePart(w, r, "image")
	if err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err, s.logger)
		return
	}
	if data == nil {
		writeStatusError(w, r, http.StatusBadRequest, errNoImage, s.logger)
		return
	}

	res, quality, err := s.deps.Extractor.ExtractWithQuality(r.Context(), data, mime)
	if err != nil {
		writeStatusError(w, r, analyzeStatus(err), err, s.logger)
		return
	}
	w.Header().Set("X-Extraction-Quality", string(quality))
	ok(w, res, s.logger)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	data, mime, name, err := s.readImagePart(w, r, "image")
	if err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err, s.logger)
		return
	}

	raw := r.FormValue("data")
	if strings.TrimSpace(raw) == "" {
		badRequest(w, "data field is required", s.logger)
		return
	}
	var req entity.MenuSaveRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		badRequest(w, "data is not valid JSON", s.logger)
		return
	}

	var upload *menusvc.Upload
	if data != nil {
		ext := filepath.Ext(name)
		if !constants.IsImageExt(ext) {
			ext = constants.ExtForMime(mime)
		}
		upload = &menusvc.Upload{Bytes: data, Ext: ext}
	}

	rec, err := s.deps.Menus.Save(r.Context(), req, upload)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, withImageURL(rec), s.logger)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurant, date := strings.TrimSpace(q.Get("restaurant")), strings.TrimSpace(q.Get("date"))

	switch {
	case restaurant != "" && date != "":
		rec, err := s.deps.Menus.Load(r.Context(), restaurant, date)
		if err != nil {
			handleError(w, r, err, s.logger)
			return
		}
		ok(w, withImageURL(rec), s.logger)
	case q.Get("list") == "true":
		list, err := s.deps.Menus.List(r.Context())
		if err != nil {
			handleError(w, r, err, s.logger)
			return
		}
		ok(w, list, s.logger)
	default:
		badRequest(w, "restaurant and date are required", s.logger)
	}
}

func (s *Server) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.deps.Menus.Delete(r.Context(), q.Get("restaurant"), q.Get("date")); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, map[string]bool{"deleted": true}, s.logger)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	rel, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		badRequest(w, "malformed image path", s.logger)
		return
	}
	abs, err := s.deps.Images.Resolve(rel)
	if err != nil {
		writeStatusError(w, r, http.StatusForbidden, err, s.logger)
		return
	}
	fi, err := os.Stat(abs)
	if err != nil || fi.IsDir() {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "image not found", nil, s.logger)
		return
	}
	w.Header().Set("Content-Type", constants.MimeForExt(filepath.Ext(abs)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, abs)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Publisher.Publish(r.Context())
	if errors.Is(err, viewer.ErrNothingToPublish) {
		writeStatusError(w, r, http.StatusBadRequest, err, s.logger)
		return
	}
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, res, s.logger)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	body, err := s.deps.Publisher.LoadPublished()
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "nothing has been published yet", nil, s.logger)
		return
	}
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	if !json.Valid(body) {
		handleError(w, r, fmt.Errorf("published document is corrupt: %w", common.ErrInternal), s.logger)
		return
	}
	ok(w, json.RawMessage(body), s.logger)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	restaurant := r.URL.Query().Get("restaurant")
	body, err := s.deps.Exporter.ExportMenusXLSX(r.Context(), restaurant)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="menus.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// readImagePart parses a multipart form and returns the named file part. A missing part
// yields nil data without error.
func (s *Server) readImagePart(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxImageBytes+formSlack)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", "", fmt.Errorf("upload exceeds %d bytes: %w", constants.MaxImageBytes, common.ErrInvalidInput)
		}
		return nil, "", "", fmt.Errorf("multipart form expected: %w", common.ErrInvalidInput)
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", "", nil
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("read %s: %w", field, common.ErrInvalidInput)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxImageBytes+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) > constants.MaxImageBytes {
		return nil, "", "", fmt.Errorf("image exceeds %d bytes: %w", constants.MaxImageBytes, common.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, "", "", nil
	}
	return data, hdr.Header.Get("Content-Type"), hdr.Filename, nil
}

func withImageURL(rec *entity.MenuRecord) loadedMenu {
	out := loadedMenu{MenuRecord: rec}
	if rec.ImagePath != "" {
		u := ImageURL(rec.ImagePath)
		out.ImageURL = &u
	}
	return out
}

// ImageURL is the API path that serves a stored image.
func ImageURL(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return imagePathPrefix + strings.Join(parts, "/")
}
