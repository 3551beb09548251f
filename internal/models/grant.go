package models

import "time"

// UploadGrant is what a client receives in exchange for a valid upload
// intent: the canonical path the upload must land on and a presigned URL
// bound to that path, the declared content type and the exact size.
type UploadGrant struct {
	// ObjectPath is the canonical path minted for this upload.
	ObjectPath string
	// UploadURL is the presigned PUT URL. Expires at ExpiresAt.
	UploadURL string
	// ExpiresAt is when the presigned URL stops working.
	ExpiresAt time.Time
}
