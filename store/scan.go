package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// reconcile walks the shapes tree and indexes every image file it finds.
// Both layouts are recognized: <label folder>/<quality>/<file> and the
// legacy flat <label folder>/<file>, which carries an implicit perfect
// quality. Records already present for the same (filename, label, quality)
// are kept, so running it again is a no-op.
func (s *Store) reconcile() {
	dir := s.shapesDir()
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("dir", dir).Msg("cannot stat shapes directory")
		}
		return
	}
	for _, label := range Labels {
		labelDir := filepath.Join(dir, labelFolders[label])
		for _, quality := range Qualities {
			s.indexDir(filepath.Join(labelDir, quality), label, quality, false)
		}
		s.indexDir(labelDir, label, DefaultQuality, true)
	}
	log.Info().Int("images", len(s.images)).Str("dir", dir).Msg("shapes directory reconciled")
}

func (s *Store) indexDir(dir, label, quality string, flat bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		}
		return
	}
	for _, e := range entries {
		if e.IsDir() || !imageExt.MatchString(e.Name()) {
			continue
		}
		ts, ok := timestampFromName(e.Name())
		if !ok {
			// Hand-placed files without an embedded timestamp keep their
			// modification time.
			info, err := e.Info()
			if err != nil {
				log.Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable file")
				continue
			}
			ts = info.ModTime().UnixMilli()
		}
		webPath := canonicalPath(label, quality, e.Name())
		if flat {
			webPath = legacyPath(label, e.Name())
		}
		s.appendUnique(Image{
			Filename:  e.Name(),
			Label:     label,
			Quality:   quality,
			Timestamp: ts,
			Path:      webPath,
		})
	}
}

func (s *Store) appendUnique(img Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.images {
		if existing.matches(img.Filename, img.Label, img.Quality) {
			return
		}
	}
	s.images = append(s.images, img)
}
