// Package httpapi exposes the upload, commit and retrieval operations over
// HTTP using gin. It owns request/response shapes, bearer-token auth and the
// mapping from service errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/logging"
	"github.com/workhive/filegate/internal/models"
	"github.com/workhive/filegate/internal/objectpath"
	"github.com/workhive/filegate/internal/services"
)

// Objects is the slice of the object service the HTTP layer needs.
type Objects interface {
	CreateUploadGrant(ctx context.Context, principal auth.Principal, purpose string, contentType string, size int64) (*models.UploadGrant, error)
	AttachPolicy(ctx context.Context, principal auth.Principal, rawPath string, visibility string) (*models.ObjectPolicy, error)
	GetPolicy(ctx context.Context, principal auth.Principal, rawPath string) (*models.ObjectPolicy, error)
	Fetch(ctx context.Context, principal auth.Principal, rawPath string) (*services.ObjectDownload, error)
}

var _ Objects = (*services.ObjectService)(nil)

type Handler struct {
	objects Objects
	log     logging.Logger
}

func NewHandler(objects Objects, log logging.Logger) *Handler {
	return &Handler{objects: objects, log: log.With("module", "httpapi")}
}

type uploadRequest struct {
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

type uploadResponse struct {
	ObjectPath          string    `json:"objectPath"`
	UploadURL           string    `json:"uploadUrl"`
	ExpectedContentType string    `json:"expectedContentType"`
	ExpectedSize        int64     `json:"expectedSize"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

type commitRequest struct {
	ObjectPath string `json:"objectPath"`
	Visibility string `json:"visibility"`
}

type policyResponse struct {
	ObjectPath string    `json:"objectPath"`
	OwnerID    string    `json:"ownerId"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toPolicyResponse(p *models.ObjectPolicy) policyResponse {
	return policyResponse{
		ObjectPath: p.Path,
		OwnerID:    p.OwnerID,
		Visibility: string(p.Visibility),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// UploadProfile issues an upload grant for a profile image.
// POST /api/objects/upload
func (h *Handler) UploadProfile(c *gin.Context) {
	h.createUpload(c, objectpath.PurposeProfile)
}

// UploadResume issues an upload grant for a resume.
// POST /api/objects/upload-resume
func (h *Handler) UploadResume(c *gin.Context) {
	h.createUpload(c, objectpath.PurposeResume)
}

// UploadDocument issues an upload grant for a job-requirement document.
// POST /api/objects/upload-document
func (h *Handler) UploadDocument(c *gin.Context) {
	h.createUpload(c, objectpath.PurposeRequirement)
}

func (h *Handler) createUpload(c *gin.Context, purpose objectpath.Purpose) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	grant, err := h.objects.CreateUploadGrant(c.Request.Context(), principal, string(purpose), req.ContentType, req.FileSize)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		ObjectPath:          grant.ObjectPath,
		UploadURL:           grant.UploadURL,
		ExpectedContentType: req.ContentType,
		ExpectedSize:        req.FileSize,
		ExpiresAt:           grant.ExpiresAt,
	})
}

// Commit attaches or updates the access policy for an uploaded object.
// POST /api/objects/commit
func (h *Handler) Commit(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	policy, err := h.objects.AttachPolicy(c.Request.Context(), principal, req.ObjectPath, req.Visibility)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPolicyResponse(policy))
}

// GetPolicy returns the ledger entry for one object to its owner or an
// admin.
// GET /api/objects/policy?path=...
func (h *Handler) GetPolicy(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	policy, err := h.objects.GetPolicy(c.Request.Context(), principal, c.Query("path"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPolicyResponse(policy))
}

// FetchObject streams object bytes to an authorized caller.
// GET /objects/*path
func (h *Handler) FetchObject(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	dl, err := h.objects.Fetch(c.Request.Context(), principal, c.Param("path"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Body, nil)
}

// writeError maps service errors onto HTTP status codes. Denials and missing
// objects share one 404 body so the response never reveals which it was.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *objectpath.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, common.ErrInvalidVisibility):
		c.JSON(http.StatusBadRequest, gin.H{"error": "visibility must be public or private"})
	case errors.Is(err, common.ErrOwnershipConflict):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this object"})
	case errors.Is(err, common.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
	case errors.Is(err, common.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage unavailable"})
	default:
		h.log.Error(c.Request.Context(), "unhandled service error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
