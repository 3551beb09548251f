// Package objectpath is the single authority for storage path shape and
// upload constraints. Every path under which user bytes are stored is minted
// here, and every path arriving from the outside is re-validated here before
// any lookup. No part of a path (owner segment, purpose, extension) is ever
// taken from client input.
package objectpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Purpose classifies what an uploaded file is for. The purpose determines
// the allow-listed content types and the size ceiling.
type Purpose string

const (
	// PurposeProfile is a profile image.
	PurposeProfile Purpose = "profile"
	// PurposeResume is a job seeker's resume.
	PurposeResume Purpose = "resume"
	// PurposeRequirement is an employer's job-requirement document.
	PurposeRequirement Purpose = "requirement"
)

// class holds the upload constraints for one purpose.
type class struct {
	maxSize      int64
	contentTypes map[string]struct{}
}

var classes = map[Purpose]class{
	PurposeProfile: {
		maxSize: 5 << 20,
		contentTypes: map[string]struct{}{
			"image/jpeg": {},
			"image/png":  {},
			"image/webp": {},
		},
	},
	PurposeResume: {
		maxSize: 10 << 20,
		contentTypes: map[string]struct{}{
			"application/pdf":    {},
			"application/msword": {},
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
		},
	},
	PurposeRequirement: {
		maxSize: 10 << 20,
		contentTypes: map[string]struct{}{
			"application/pdf":    {},
			"application/msword": {},
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
		},
	},
}

// extensions maps content types to the extension stored objects carry.
// Resolution goes through this map only; client-supplied filenames never
// reach a stored path.
var extensions = map[string]string{
	"image/jpeg":         "jpg",
	"image/png":          "png",
	"image/webp":         "webp",
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// contentTypeByExt is the reverse of extensions, used when serving bytes
// back: the response content type comes from the server-side map, not from
// whatever the uploader set on the object.
var contentTypeByExt = func() map[string]string {
	m := make(map[string]string, len(extensions))
	for ct, ext := range extensions {
		m[ext] = ct
	}
	return m
}()

// seams for tests
var (
	nowFunc  = time.Now
	newNonce = uuid.NewString
)

// segmentRe constrains the owner segment: user IDs are UUIDs or similar
// opaque tokens, never anything with path metacharacters.
var segmentRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// pathRe is the canonical stored-object path shape:
// /users/<ownerId>/<purpose>-<unixSeconds>-<nonce>.<ext>
var pathRe = regexp.MustCompile(`^/users/([A-Za-z0-9-]+)/(profile|resume|requirement)-(\d+)-([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})\.([a-z0-9]+)$`)

// ValidationError describes why an upload intent or a requested path was
// rejected. Always a client error, never an infrastructure one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid object path: " + e.Reason
}

func rejectf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Path is a validated stored-object path. Immutable once minted; the zero
// value is not valid.
type Path struct {
	owner   string
	purpose Purpose
	raw     string
}

// Owner returns the user ID segment of the path.
func (p Path) Owner() string { return p.owner }

// Purpose returns the purpose class of the path.
func (p Path) Purpose() Purpose { return p.purpose }

// String returns the canonical path, leading slash included.
func (p Path) String() string { return p.raw }

// Key returns the backing-store object key (the path without the leading
// slash), the form S3-compatible stores expect.
func (p Path) Key() string { return strings.TrimPrefix(p.raw, "/") }

// ContentType resolves the response content type from the path extension via
// the server-side map.
func (p Path) ContentType() string {
	ext := p.raw[strings.LastIndexByte(p.raw, '.')+1:]
	return contentTypeByExt[ext]
}

// IsZero reports whether p was never minted or parsed.
func (p Path) IsZero() bool { return p.raw == "" }

// Mint validates an upload intent and produces the canonical path the upload
// must land on. The owner segment is always the authenticated caller's ID;
// there is no way to mint a path under someone else's prefix.
func Mint(ownerID string, purpose Purpose, contentType string, size int64) (Path, error) {
	if !segmentRe.MatchString(ownerID) {
		return Path{}, rejectf("owner id %q is not a valid path segment", ownerID)
	}

	c, ok := classes[purpose]
	if !ok {
		return Path{}, rejectf("unknown purpose %q", string(purpose))
	}

	if _, ok := c.contentTypes[contentType]; !ok {
		return Path{}, rejectf("content type %q not allowed for purpose %q", contentType, purpose)
	}

	if size <= 0 {
		return Path{}, rejectf("file size must be positive, got %d", size)
	}
	if size > c.maxSize {
		return Path{}, rejectf("file size %d exceeds limit %d for purpose %q", size, c.maxSize, purpose)
	}

	// Second gate on the extension map: the allow-list above and this map
	// must both know the content type.
	ext, ok := extensions[contentType]
	if !ok {
		return Path{}, rejectf("no extension mapping for content type %q", contentType)
	}

	raw := fmt.Sprintf("/users/%s/%s-%d-%s.%s", ownerID, purpose, nowFunc().Unix(), newNonce(), ext)
	return Path{owner: ownerID, purpose: purpose, raw: raw}, nil
}

// MaxSize returns the size ceiling for a purpose, or 0 for unknown purposes.
func MaxSize(purpose Purpose) int64 {
	return classes[purpose].maxSize
}

// Parse re-validates a path arriving from outside (a retrieval request, a
// policy attach). Traversal sequences are rejected before the shape check
// and the shape check runs before any lookup anywhere.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, rejectf("empty path")
	}
	if strings.Contains(raw, "..") {
		return Path{}, rejectf("path contains traversal sequence")
	}
	if strings.ContainsAny(raw, "\\\x00") {
		return Path{}, rejectf("path contains forbidden characters")
	}

	m := pathRe.FindStringSubmatch(raw)
	if m == nil {
		return Path{}, rejectf("path does not match canonical shape")
	}

	owner, purpose, ts, ext := m[1], Purpose(m[2]), m[3], m[5]

	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		return Path{}, rejectf("invalid timestamp segment")
	}

	contentType, ok := contentTypeByExt[ext]
	if !ok {
		return Path{}, rejectf("unknown extension %q", ext)
	}
	if _, ok := classes[purpose].contentTypes[contentType]; !ok {
		return Path{}, rejectf("extension %q not allowed for purpose %q", ext, purpose)
	}

	return Path{owner: owner, purpose: purpose, raw: raw}, nil
}
