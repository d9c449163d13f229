package store

import (
	"errors"
	"path"
	"regexp"
	"strconv"
)

// Labels are the shape classes a drawing can be submitted as, Qualities the
// grades a submitter can assign. Both sets are fixed.
var (
	Labels    = []string{"circle", "square", "triangle"}
	Qualities = []string{"perfect", "medium", "irregular"}
)

// DefaultQuality is assumed wherever a quality is absent, both for incoming
// requests and for files found in the legacy flat layout.
const DefaultQuality = "perfect"

// labelFolders maps a label to its directory name under <root>/shapes.
var labelFolders = map[string]string{
	"circle":   "circles",
	"square":   "squares",
	"triangle": "triangles",
}

var (
	ErrInvalidLabel   = errors.New("invalid label")
	ErrInvalidQuality = errors.New("invalid quality")
	ErrInvalidPayload = errors.New("invalid image payload")
)

// Image is one stored drawing. Data holds the base64 payload as submitted
// and is empty for images recovered from disk at startup; their pixels live
// only in the file Path points at.
type Image struct {
	Filename  string `json:"filename"`
	Label     string `json:"label"`
	Quality   string `json:"quality"`
	Data      string `json:"image,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Path      string `json:"path"`
}

func (img Image) matches(filename, label, quality string) bool {
	return img.Filename == filename && img.Label == label && img.Quality == quality
}

var (
	imageExt      = regexp.MustCompile(`(?i)\.(png|jpe?g)$`)
	stampedName   = regexp.MustCompile(`^.+_(\d+)\.(?i:png|jpe?g)$`)
	dataURLPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)
)

// timestampFromName extracts the unix-millisecond timestamp embedded in
// filenames of the form <name>_<digits>.<ext>.
func timestampFromName(name string) (int64, bool) {
	m := stampedName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// canonicalPath is the web-relative location of an image in the
// quality-subdirectory layout.
func canonicalPath(label, quality, filename string) string {
	return path.Join("/shapes", labelFolders[label], quality, filename)
}

// legacyPath is the web-relative location of an image in the older flat
// layout, where files sit directly in the label folder.
func legacyPath(label, filename string) string {
	return path.Join("/shapes", labelFolders[label], filename)
}
