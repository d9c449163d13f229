// Package v1 exposes the shape gallery over HTTP: one endpoint to submit a
// drawing, one to browse it, one to delete from it.
package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yudhap/shape-gallery/store"
)

var meter = otel.Meter("github.com/yudhap/shape-gallery/api/v1")

// Gallery is the slice of the image store the handlers need.
type Gallery interface {
	Add(label, quality, payload string) (store.Image, error)
	All() []store.Image
	ByLabel(label string) []store.Image
	ByQuality(quality string) []store.Image
	ByLabelAndQuality(label, quality string) []store.Image
	Delete(filename, label, quality string) store.DeleteOutcome
}

func NewController(g Gallery) Controller {
	saved, err := meter.Int64Counter("shapes_saved_total",
		metric.WithDescription("Number of shape drawings stored"))
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create shapes_saved_total counter")
	}
	deleted, err := meter.Int64Counter("shapes_deleted_total",
		metric.WithDescription("Number of shape drawings deleted"))
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create shapes_deleted_total counter")
	}
	return Controller{
		gallery: g,
		saved:   saved,
		deleted: deleted,
	}
}

type Controller struct {
	gallery Gallery
	saved   metric.Int64Counter
	deleted metric.Int64Counter
}

type submitRequest struct {
	Image   string `json:"image"`
	Label   string `json:"label"`
	Quality string `json:"quality"`
}

type submitResponse struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Label     string `json:"label"`
	Quality   string `json:"quality"`
	Timestamp int64  `json:"timestamp"`
}

// SubmitShape accepts {image, label, quality?} where image is a base64 data
// URL, stores it and responds with the created record's coordinates. Quality
// defaults to perfect.
func (c *Controller) SubmitShape() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// limit the size of the request body
		r.Body = http.MaxBytesReader(w, r.Body, 10<<20) //10MB
		defer r.Body.Close()

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Debug().Err(err).Msg("malformed submission body")
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		if req.Image == "" || req.Label == "" {
			writeError(w, http.StatusBadRequest, errors.New("image and label are required"))
			return
		}
		if req.Quality == "" {
			req.Quality = store.DefaultQuality
		}

		img, err := c.gallery.Add(req.Label, req.Quality, req.Image)
		if err != nil {
			if errors.Is(err, store.ErrInvalidLabel) ||
				errors.Is(err, store.ErrInvalidQuality) ||
				errors.Is(err, store.ErrInvalidPayload) {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			log.Error().Err(err).Str("label", req.Label).Msg("failed to store shape")
			writeError(w, http.StatusInternalServerError, errors.New("failed to store shape"))
			return
		}

		c.saved.Add(r.Context(), 1, metric.WithAttributes(
			attribute.String("label", img.Label),
			attribute.String("quality", img.Quality)))

		writeJSON(w, http.StatusCreated, submitResponse{
			Filename:  img.Filename,
			Path:      img.Path,
			Label:     img.Label,
			Quality:   img.Quality,
			Timestamp: img.Timestamp,
		})
	}
}

type listResponse struct {
	Images []store.Image `json:"images"`
}

// ListShapes returns the gallery newest-first, or the matching subset in
// insertion order when label and/or quality query parameters are given.
func (c *Controller) ListShapes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := r.URL.Query().Get("label")
		quality := r.URL.Query().Get("quality")

		var images []store.Image
		switch {
		case label != "" && quality != "":
			images = c.gallery.ByLabelAndQuality(label, quality)
		case label != "":
			images = c.gallery.ByLabel(label)
		case quality != "":
			images = c.gallery.ByQuality(quality)
		default:
			images = c.gallery.All()
		}

		writeJSON(w, http.StatusOK, listResponse{Images: images})
	}
}

type deleteRequest struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	Quality  string `json:"quality"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// DeleteShape removes a stored drawing by {filename, label, quality?}. A
// miss is still a 200 with a warning: the caller may have removed the file
// by other means, and retries should stay idempotent.
func (c *Controller) DeleteShape() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req deleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Debug().Err(err).Msg("malformed deletion body")
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		if req.Filename == "" || req.Label == "" {
			writeError(w, http.StatusBadRequest, errors.New("filename and label are required"))
			return
		}

		resp := deleteResponse{Success: true}
		switch c.gallery.Delete(req.Filename, req.Label, req.Quality) {
		case store.Deleted:
			c.deleted.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("label", req.Label)))
		case store.DeletedRecordOnly:
			c.deleted.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("label", req.Label)))
			resp.Warning = "image file was already gone"
		case store.DeleteNotFound:
			resp.Warning = "no such image, it may have been deleted already"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type cError struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, cError{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
