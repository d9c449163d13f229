package v1_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/yudhap/shape-gallery/api/v1"
	"github.com/yudhap/shape-gallery/store"
)

func newRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()
	s := store.New(t.TempDir())
	ctrl := NewController(s)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/shapes", ctrl.ListShapes()).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/shapes", ctrl.SubmitShape()).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/shapes", ctrl.DeleteShape()).Methods(http.MethodDelete)
	return router, s
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func postShape(t *testing.T, router *mux.Router, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shapes", bytes.NewReader(b))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitShape(t *testing.T) {
	t.Run("A valid submission is answered with 201 and the stored record's coordinates", func(t *testing.T) {
		router, s := newRouter(t)

		w := postShape(t, router, map[string]string{
			"image":   pngDataURL(t),
			"label":   "circle",
			"quality": "medium",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Filename  string `json:"filename"`
			Path      string `json:"path"`
			Label     string `json:"label"`
			Quality   string `json:"quality"`
			Timestamp int64  `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "circle", resp.Label)
		assert.Equal(t, "medium", resp.Quality)
		assert.Equal(t, "/shapes/circles/medium/"+resp.Filename, resp.Path)
		assert.NotZero(t, resp.Timestamp)

		require.Len(t, s.All(), 1)
	})

	t.Run("The quality defaults to perfect when omitted", func(t *testing.T) {
		router, _ := newRouter(t)

		w := postShape(t, router, map[string]string{
			"image": pngDataURL(t),
			"label": "square",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"quality":"perfect"`)
	})

	t.Run("A missing image or label is a 400 and stores nothing", func(t *testing.T) {
		router, s := newRouter(t)

		w := postShape(t, router, map[string]string{"label": "circle"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = postShape(t, router, map[string]string{"image": pngDataURL(t)})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		assert.Empty(t, s.All())
	})

	t.Run("An unknown label or quality is a 400 naming the allowed set", func(t *testing.T) {
		router, _ := newRouter(t)

		w := postShape(t, router, map[string]string{
			"image": pngDataURL(t),
			"label": "hexagon",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "circle, square, triangle")

		w = postShape(t, router, map[string]string{
			"image":   pngDataURL(t),
			"label":   "circle",
			"quality": "excellent",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "perfect, medium, irregular")
	})

	t.Run("A body that is not JSON is a 400", func(t *testing.T) {
		router, _ := newRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/shapes", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListShapes(t *testing.T) {
	t.Run("An empty gallery is an empty list, not null", func(t *testing.T) {
		router, _ := newRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"images":[]}`, w.Body.String())
	})

	t.Run("The gallery is returned newest first and honors label and quality filters", func(t *testing.T) {
		router, _ := newRouter(t)

		for _, shape := range []string{"circle", "square", "triangle"} {
			w := postShape(t, router, map[string]string{
				"image": pngDataURL(t),
				"label": shape,
			})
			require.Equal(t, http.StatusCreated, w.Code)
			time.Sleep(2 * time.Millisecond)
		}

		var resp struct {
			Images []store.Image `json:"images"`
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Images, 3)
		assert.Equal(t, "triangle", resp.Images[0].Label, "most recent submission first")

		req = httptest.NewRequest(http.MethodGet, "/api/v1/shapes?label=square", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Images, 1)
		assert.Equal(t, "square", resp.Images[0].Label)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/shapes?label=square&quality=irregular", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Images)
	})
}

func TestDeleteShape(t *testing.T) {
	deleteShape := func(t *testing.T, router *mux.Router, body map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/shapes", bytes.NewReader(b))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Deleting a stored image succeeds and empties the gallery", func(t *testing.T) {
		router, s := newRouter(t)
		w := postShape(t, router, map[string]string{
			"image": pngDataURL(t),
			"label": "circle",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Filename string `json:"filename"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		w = deleteShape(t, router, map[string]string{
			"filename": created.Filename,
			"label":    "circle",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
		assert.Empty(t, s.All())
	})

	t.Run("Deleting something that does not exist is a soft success with a warning", func(t *testing.T) {
		router, _ := newRouter(t)

		w := deleteShape(t, router, map[string]string{
			"filename": "circle_1.png",
			"label":    "circle",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool   `json:"success"`
			Warning string `json:"warning"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Warning)
	})

	t.Run("A missing filename or label is a 400", func(t *testing.T) {
		router, _ := newRouter(t)

		w := deleteShape(t, router, map[string]string{"label": "circle"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = deleteShape(t, router, map[string]string{"filename": "circle_1.png"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
