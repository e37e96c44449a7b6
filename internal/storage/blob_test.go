package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestStore(t *testing.T, limits Limits) (*BlobStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewBlobStore(fs, "https://files.example.com/", limits), fs
}

func TestPutStoresSniffedDocument(t *testing.T) {
	store, fs := newTestStore(t, Limits{})
	up, err := store.Put(context.Background(), KindBadgePhoto, "sub-1", "image/png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if up.ContentType != "image/png" {
		t.Fatalf("ContentType = %s, want image/png", up.ContentType)
	}
	if !strings.HasPrefix(up.Key, "badge-photo/sub-1/") || !strings.HasSuffix(up.Key, ".png") {
		t.Fatalf("Key = %s", up.Key)
	}
	if up.URL != "https://files.example.com/"+up.Key {
		t.Fatalf("URL = %s", up.URL)
	}
	ok, err := afero.Exists(fs, up.Key)
	if err != nil || !ok {
		t.Fatalf("stored file missing: %v", err)
	}

	f, err := store.Open(up.Key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, pngHeader) {
		t.Fatal("stored bytes differ")
	}
}

func TestPutRejectsDisguisedText(t *testing.T) {
	store, _ := newTestStore(t, Limits{})
	body := []byte("just some text pretending to be a pdf")
	_, err := store.Put(context.Background(), KindW9, "sub-1", "application/pdf", int64(len(body)), bytes.NewReader(body))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Put() error = %v, want ErrUnsupportedType", err)
	}
}

func TestPutRejectsDeclaredType(t *testing.T) {
	store, fs := newTestStore(t, Limits{})
	_, err := store.Put(context.Background(), KindIdentity, "sub-1", "image/gif", 10, bytes.NewReader(pngHeader))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Put() error = %v, want ErrUnsupportedType", err)
	}
	entries, _ := afero.ReadDir(fs, "/")
	if len(entries) != 0 {
		t.Fatal("rejected upload must not write anything")
	}
}

func TestPutRejectsOversize(t *testing.T) {
	store, _ := newTestStore(t, Limits{MaxDocumentBytes: 16})

	_, err := store.Put(context.Background(), KindBadgePhoto, "sub-1", "image/png", 1<<20, bytes.NewReader(pngHeader))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("declared size: error = %v, want ErrTooLarge", err)
	}

	_, err = store.Put(context.Background(), KindBadgePhoto, "sub-1", "image/png", 0, bytes.NewReader(pngHeader))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("actual size: error = %v, want ErrTooLarge", err)
	}
}

func TestPutUnknownKind(t *testing.T) {
	store, _ := newTestStore(t, Limits{})
	_, err := store.Put(context.Background(), Kind("resume"), "sub-1", "", 1, bytes.NewReader(pngHeader))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Put() error = %v, want ErrUnknownKind", err)
	}
}

func TestPutSanitizesOwner(t *testing.T) {
	store, _ := newTestStore(t, Limits{})
	up, err := store.Put(context.Background(), KindSignedForms, "../../etc", "", 0, bytes.NewReader([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(up.Key, "signed-forms/etc/") {
		t.Fatalf("Key = %s", up.Key)
	}
}

func TestPutRejectsMismatchedDeclaredType(t *testing.T) {
	store, fs := newTestStore(t, Limits{})
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	_, err := store.Put(context.Background(), KindW9, "sub-1", "image/png", int64(len(pdf)), bytes.NewReader(pdf))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Put() error = %v, want ErrUnsupportedType", err)
	}
	entries, _ := afero.ReadDir(fs, "/")
	if len(entries) != 0 {
		t.Fatal("rejected upload must not write anything")
	}

	up, err := store.Put(context.Background(), KindW9, "sub-1", "application/pdf; charset=binary", int64(len(pdf)), bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("matching declared type: error = %v", err)
	}
	if up.ContentType != "application/pdf" {
		t.Fatalf("ContentType = %s", up.ContentType)
	}
}

func TestSameFormat(t *testing.T) {
	cases := []struct {
		declared, detected string
		want               bool
	}{
		{"image/png", "image/png", true},
		{"image/png", "application/pdf", false},
		{"image/jpeg", "image/webp", false},
		{"audio/webm", "video/webm", true},
		{"audio/ogg", "application/ogg", true},
		{"audio/mp4", "video/mp4", true},
		{"audio/webm", "audio/ogg", false},
		{"video/webm", "image/webp", false},
	}
	for _, tc := range cases {
		if got := sameFormat(tc.declared, tc.detected); got != tc.want {
			t.Errorf("sameFormat(%q, %q) = %v, want %v", tc.declared, tc.detected, got, tc.want)
		}
	}
}
