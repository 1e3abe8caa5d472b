// Package audio persists synthesized speech files and tracks which ones are
// still downloadable.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750

	filenameFormat  = "audio_%s.mp3"
	previewLimit    = 100
	previewEllipsis = "..."
)

const (
	errFmtCreateDir = "failed to create audio directory: %w"
	errFmtWrite     = "failed to write audio file %s: %w"
	errFmtRemove    = "failed to remove audio file %s: %w"
)

var (
	// ErrOutputDirEmpty is returned when the store has no directory.
	ErrOutputDirEmpty = errors.New("output directory cannot be empty")
	// ErrAudioEmpty is returned when there are no bytes to save.
	ErrAudioEmpty = errors.New("audio data cannot be empty")
)

// Artifact describes a saved speech file.
type Artifact struct {
	ID        string
	Filename  string
	FilePath  string
	Preview   string
	Size      int64
	CreatedAt time.Time
}

// Store writes audio files into a single directory.
type Store struct {
	dir string
}

// NewStore creates the output directory if needed and returns a Store for it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, ErrOutputDirEmpty
	}

	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return nil, fmt.Errorf(errFmtCreateDir, err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory audio files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a freshly generated id and returns its artifact.
// The preview is derived from the text that was spoken.
func (s *Store) Save(data []byte, text string) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, ErrAudioEmpty
	}

	id := uuid.NewString()
	filename := FilenameFor(id)
	path := s.Path(filename)

	err := os.WriteFile(path, data, filePermissions)
	if err != nil {
		return Artifact{}, fmt.Errorf(errFmtWrite, filename, err)
	}

	return Artifact{
		ID:        id,
		Filename:  filename,
		FilePath:  path,
		Preview:   Preview(text),
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Path returns the on-disk path of filename. The filename is reduced to its
// base name so it can never escape the store directory.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(SanitizeFilename(filename)))
}

// Exists reports whether the artifact's file is present on disk.
func (s *Store) Exists(artifact Artifact) bool {
	info, err := os.Stat(artifact.FilePath)

	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the artifact's file. A missing file is not an error.
func (s *Store) Remove(artifact Artifact) error {
	err := os.Remove(artifact.FilePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(errFmtRemove, artifact.Filename, err)
	}

	return nil
}

// FilenameFor returns the file name used for an audio id.
func FilenameFor(id string) string {
	return fmt.Sprintf(filenameFormat, id)
}

// Preview returns at most 100 characters of text; longer text is cut and
// ends with "...".
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLimit {
		return text
	}

	runes := []rune(text)

	return string(runes[:previewLimit-len(previewEllipsis)]) + previewEllipsis
}
