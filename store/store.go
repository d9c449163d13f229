// Package store maintains the shape gallery: an in-memory index of image
// records mirrored by a folder-per-label, folder-per-quality directory tree
// on disk. The index is rebuilt from the tree when the store is constructed,
// so a restart does not lose previously submitted drawings.
package store

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store indexes the images below <root>/shapes. The index is a cache over
// the filesystem, not an independent source of truth: Add and Delete mutate
// both, and the constructor reconciles the index against whatever files
// already exist.
type Store struct {
	mu     sync.RWMutex
	root   string
	images []Image
}

// New builds a store over root, the directory served as the web root
// (images live under root/shapes), and reconciles the index against the
// files already there. A missing tree yields an empty store; scan problems
// are logged, never fatal.
func New(root string) *Store {
	s := &Store{root: root}
	s.reconcile()
	return s
}

func (s *Store) shapesDir() string {
	return filepath.Join(s.root, "shapes")
}

// Add persists one submitted drawing and registers it. payload is a
// data-URL-style base64 PNG; the prefix is stripped before decoding. The
// file lands at <root>/shapes/<folder>/<quality>/<label>_<unixms>.png and
// the returned record keeps the original payload.
func (s *Store) Add(label, quality, payload string) (Image, error) {
	if !slices.Contains(Labels, label) {
		return Image{}, fmt.Errorf("%w %q, must be one of: %s",
			ErrInvalidLabel, label, strings.Join(Labels, ", "))
	}
	if !slices.Contains(Qualities, quality) {
		return Image{}, fmt.Errorf("%w %q, must be one of: %s",
			ErrInvalidQuality, quality, strings.Join(Qualities, ", "))
	}
	raw, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(payload, ""))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ts := time.Now().UnixMilli()
	filename := fmt.Sprintf("%s_%d.png", label, ts)
	dir := filepath.Join(s.shapesDir(), labelFolders[label], quality)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Image{}, fmt.Errorf("creating %s: %w", dir, err)
	}
	// A same-millisecond submission for the same label lands on the same
	// name; the file is overwritten silently and the record replaced.
	if err := os.WriteFile(filepath.Join(dir, filename), raw, 0o644); err != nil {
		return Image{}, fmt.Errorf("writing %s: %w", filename, err)
	}

	img := Image{
		Filename:  filename,
		Label:     label,
		Quality:   quality,
		Data:      payload,
		Timestamp: ts,
		Path:      canonicalPath(label, quality, filename),
	}
	s.mu.Lock()
	s.images = slices.DeleteFunc(s.images, func(existing Image) bool {
		return existing.matches(filename, label, quality)
	})
	s.images = append(s.images, img)
	s.mu.Unlock()

	log.Debug().
		Str("file", img.Path).
		Int64("size", int64(len(raw))).
		Msg("image stored")
	return img, nil
}

// All returns a copy of every record, most recent first.
func (s *Store) All() []Image {
	s.mu.RLock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// ByLabel returns the records for one label in insertion order. Unknown
// values are not an error, they simply match nothing.
func (s *Store) ByLabel(label string) []Image {
	return s.filter(func(img Image) bool { return img.Label == label })
}

// ByQuality returns the records for one quality grade in insertion order.
func (s *Store) ByQuality(quality string) []Image {
	return s.filter(func(img Image) bool { return img.Quality == quality })
}

// ByLabelAndQuality returns the records matching both, in insertion order.
func (s *Store) ByLabelAndQuality(label, quality string) []Image {
	return s.filter(func(img Image) bool {
		return img.Label == label && img.Quality == quality
	})
}

func (s *Store) filter(keep func(Image) bool) []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Image{}
	for _, img := range s.images {
		if keep(img) {
			out = append(out, img)
		}
	}
	return out
}

// DeleteOutcome reports what Delete actually accomplished, so callers can
// distinguish a clean removal from drift between the index and the disk.
type DeleteOutcome int

const (
	// DeleteNotFound means no record and no file matched: nothing happened.
	DeleteNotFound DeleteOutcome = iota
	// Deleted means a backing file was removed (and any matching record
	// with it).
	Deleted
	// DeletedRecordOnly means a record was dropped from the index but no
	// file could be found or removed at any candidate path.
	DeletedRecordOnly
)

// Delete removes the record matching (filename, label, quality) and,
// best-effort, its backing file. An empty quality means perfect. The file is
// looked for at the record's own path, then the canonical quality
// subdirectory, then the legacy flat layout; unlink failures are logged and
// the next candidate tried. The record is dropped regardless of whether a
// file was removed.
func (s *Store) Delete(filename, label, quality string) DeleteOutcome {
	if quality == "" {
		quality = DefaultQuality
	}

	s.mu.Lock()
	var recordPath string
	s.images = slices.DeleteFunc(s.images, func(img Image) bool {
		if img.matches(filename, label, quality) {
			recordPath = img.Path
			return true
		}
		return false
	})
	s.mu.Unlock()

	var candidates []string
	if recordPath != "" {
		candidates = append(candidates, filepath.Join(s.root, filepath.FromSlash(recordPath)))
	}
	candidates = append(candidates,
		filepath.Join(s.shapesDir(), labelFolders[label], quality, filename),
		filepath.Join(s.shapesDir(), labelFolders[label], filename),
	)

	removed := false
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Remove(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("could not remove image file")
			continue
		}
		log.Debug().Str("path", p).Msg("image file removed")
		removed = true
		break
	}

	switch {
	case removed:
		return Deleted
	case recordPath != "":
		return DeletedRecordOnly
	default:
		return DeleteNotFound
	}
}
