package storage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// uploadHeader builds a *multipart.FileHeader the way a real request
// delivers one.
func uploadHeader(t *testing.T, filename, contentType string, payload []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write(payload)
	mw.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestSaveAudio(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir, "https://cdn.example.com")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := []byte("fake mp3 bytes")
	url, size, err := fs.SaveAudio(uploadHeader(t, "song.mp3", "audio/mpeg", payload))
	if err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/") {
		t.Errorf("url = %q", url)
	}
	if !strings.HasSuffix(url, ".mp3") {
		t.Errorf("url = %q, want .mp3 suffix", url)
	}
	if strings.Contains(url, "song.mp3") {
		t.Error("stored URL must not echo the client filename")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1", len(entries))
	}
	stored, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Error("stored bytes differ from the upload")
	}
}

func TestSaveAudioRejectsUnknownType(t *testing.T) {
	fs, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = fs.SaveAudio(uploadHeader(t, "evil.php", "application/x-php", []byte("<?php")))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestSaveAudioHonorsFilenameExtensionForMpeg(t *testing.T) {
	fs, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	url, _, err := fs.SaveAudio(uploadHeader(t, "take.wav", "audio/mpeg", []byte("wav bytes")))
	if err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	if !strings.HasSuffix(url, ".wav") {
		t.Errorf("url = %q, want .wav suffix", url)
	}
}

func TestSaveAudioStripsContentTypeParams(t *testing.T) {
	fs, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := fs.SaveAudio(uploadHeader(t, "a.ogg", "audio/ogg; codecs=opus", []byte("ogg"))); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
}
