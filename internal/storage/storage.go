// Package storage saves uploaded song files to local disk.  Filenames are
// random UUIDs so an uploaded name can never traverse outside the upload
// directory or collide with another file.
package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not a known audio
// format.
var ErrUnsupportedType = errors.New("storage: unsupported file type")

// allowedAudio maps accepted MIME types to the extension stored on disk.
var allowedAudio = map[string]string{
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/ogg":   ".ogg",
}

// FileStore writes uploads under Dir and renders their public URLs
// against BaseURL.  With an empty BaseURL the URLs come out relative,
// which suits serving the directory from the same origin.
type FileStore struct {
	Dir     string
	BaseURL string
}

// New creates the upload directory if needed.
func New(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// SaveAudio stores an uploaded audio file and returns its public URL and
// size.  The declared Content-Type decides acceptance; the original
// filename only contributes a fallback extension.
func (s *FileStore) SaveAudio(fh *multipart.FileHeader) (string, int64, error) {
	ctype := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}
	ext, ok := allowedAudio[strings.ToLower(strings.TrimSpace(ctype))]
	if !ok {
		return "", 0, ErrUnsupportedType
	}
	if ext == ".mp3" {
		// Preserve a wav/ogg extension when the client sent a generic
		// mpeg type but a distinct filename.
		if e := strings.ToLower(filepath.Ext(fh.Filename)); e == ".wav" || e == ".ogg" {
			ext = e
		}
	}

	src, err := fh.Open()
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return "", 0, err
	}
	return s.BaseURL + path.Join("/", filepath.ToSlash(s.Dir), name), size, nil
}
