// Package storage keeps uploaded onboarding documents and recordings.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrUnsupportedType is returned when the sniffed content type is not allowed for the kind.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned when the upload exceeds the kind's size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrUnknownKind is returned for an upload kind with no policy.
	ErrUnknownKind = errors.New("unknown upload kind")
)

// Kind identifies what an upload is for.
type Kind string

const (
	KindBadgePhoto    Kind = "badge-photo"
	KindIdentity      Kind = "identity"
	KindW9            Kind = "w9"
	KindDirectDeposit Kind = "direct-deposit"
	KindSignedForms   Kind = "signed-forms"
	KindAudioPitch    Kind = "audio-pitch"
)

var documentTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

var audioTypes = []string{"audio/webm", "video/webm", "audio/ogg", "application/ogg", "audio/mpeg", "audio/wav", "audio/mp4", "video/mp4"}

type policy struct {
	types    []string
	maxBytes int64
}

// Limits sets the per-category size caps.
type Limits struct {
	MaxDocumentBytes int64
	MaxAudioBytes    int64
}

// Upload is a stored file.
type Upload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// BlobStore writes uploads to an afero filesystem and serves them under a public base URL.
type BlobStore struct {
	fs       afero.Fs
	baseURL  string
	policies map[Kind]policy
}

// NewBlobStore builds a store rooted at fs.
func NewBlobStore(fs afero.Fs, baseURL string, limits Limits) *BlobStore {
	if limits.MaxDocumentBytes <= 0 {
		limits.MaxDocumentBytes = 10 << 20
	}
	if limits.MaxAudioBytes <= 0 {
		limits.MaxAudioBytes = 20 << 20
	}
	doc := policy{types: documentTypes, maxBytes: limits.MaxDocumentBytes}
	return &BlobStore{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		policies: map[Kind]policy{
			KindBadgePhoto:    doc,
			KindIdentity:      doc,
			KindW9:            doc,
			KindDirectDeposit: doc,
			KindSignedForms:   doc,
			KindAudioPitch:    {types: audioTypes, maxBytes: limits.MaxAudioBytes},
		},
	}
}

// NewOsBlobStore stores files under root on the local disk.
func NewOsBlobStore(root, baseURL string, limits Limits) (*BlobStore, error) {
	if err := afero.NewOsFs().MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return NewBlobStore(afero.NewBasePathFs(afero.NewOsFs(), root), baseURL, limits), nil
}

var ownerPattern = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Put validates and stores one file. declared is the client's content type
// and size is the client's reported length; both are checked again against
// the bytes actually read.
func (s *BlobStore) Put(ctx context.Context, kind Kind, owner, declared string, size int64, r io.Reader) (*Upload, error) {
	p, ok := s.policies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if p.maxBytes > 0 && size > p.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, p.maxBytes)
	}
	if declared != "" && !allowed(p.types, baseType(declared)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, declared)
	}

	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, p.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	contentType := baseType(detected.String())
	if !allowed(p.types, contentType) {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedType, contentType)
	}
	if declared != "" && !sameFormat(baseType(declared), contentType) {
		return nil, fmt.Errorf("%w: declared %s but content is %s", ErrUnsupportedType, baseType(declared), contentType)
	}

	owner = ownerPattern.ReplaceAllString(owner, "")
	if owner == "" {
		owner = "anonymous"
	}
	key := path.Join(string(kind), owner, uuid.NewString()+detected.Extension())
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := afero.WriteReader(s.fs, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &Upload{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Open returns a stored file for serving.
func (s *BlobStore) Open(key string) (afero.File, error) {
	return s.fs.Open(cleanKey(key))
}

func cleanKey(key string) string {
	return path.Clean("/" + key)[1:]
}

func baseType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func allowed(types []string, ct string) bool {
	for _, t := range types {
		if t == ct {
			return true
		}
	}
	return false
}

// sameFormat compares a declared and a sniffed type. Audio containers match
// on subtype alone since browsers and sniffers disagree on audio/ vs video/
// or application/ for webm, mp4 and ogg.
func sameFormat(declared, detected string) bool {
	if declared == detected {
		return true
	}
	if !allowed(audioTypes, declared) || !allowed(audioTypes, detected) {
		return false
	}
	return subtype(declared) == subtype(detected)
}

func subtype(ct string) string {
	if i := strings.IndexByte(ct, '/'); i >= 0 {
		return ct[i+1:]
	}
	return ct
}
