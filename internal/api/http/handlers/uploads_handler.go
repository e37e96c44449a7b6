package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/storage"
	apperrors "github.com/spec-kit/onboarding-service/pkg/util"
)

// UploadsHandler accepts wizard file uploads and serves them back. Applicants
// read files through signed links; managers read them with their bearer token.
type UploadsHandler struct {
	blobs *storage.BlobStore
	links *storage.LinkSigner
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(blobs *storage.BlobStore, links *storage.LinkSigner) *UploadsHandler {
	return &UploadsHandler{blobs: blobs, links: links}
}

type uploadResponse struct {
	*storage.Upload
	SignedURL     string    `json:"signed_url"`
	LinkExpiresAt time.Time `json:"link_expires_at"`
}

// Upload handles POST /uploads/:kind. The multipart form carries "file" and
// an optional "owner" used to group files per applicant.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("file is required")
	}
	declared := fh.Header.Get(fiber.HeaderContentType)
	if strings.HasPrefix(declared, fiber.MIMEOctetStream) {
		declared = ""
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest("unreadable upload")
	}
	defer f.Close()

	upload, err := h.blobs.Put(c.UserContext(), storage.Kind(c.Params("kind")), c.FormValue("owner"), declared, fh.Size, f)
	if err != nil {
		return mapServiceError(err)
	}
	token, expires, err := h.links.Sign(upload.Key)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": uploadResponse{
		Upload:        upload,
		SignedURL:     upload.URL + "?token=" + token,
		LinkExpiresAt: expires,
	}})
}

// Serve handles GET /files/*?token=.
func (h *UploadsHandler) Serve(c *fiber.Ctx) error {
	key := c.Params("*")
	if err := h.links.Verify(c.Query("token"), key); err != nil {
		return apperrors.NewForbidden(err.Error())
	}
	return h.send(c, key)
}

// ServeManager handles GET /manager/files/* behind manager authentication.
func (h *UploadsHandler) ServeManager(c *fiber.Ctx) error {
	return h.send(c, c.Params("*"))
}

func (h *UploadsHandler) send(c *fiber.Ctx, key string) error {
	f, err := h.blobs.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFound("file", nil)
	}
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return apperrors.NewNotFound("file", nil)
	}
	c.Type(strings.TrimPrefix(path.Ext(key), "."))
	return c.SendStream(f, int(info.Size()))
}
