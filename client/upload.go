package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Upload pushes data to the presigned URL in the grant. The storage
// signature binds the declared content type and exact size, so a mismatch
// is rejected by the store itself.
func (c *Client) Upload(ctx context.Context, grant *UploadGrant, data []byte) error {
	if int64(len(data)) != grant.ExpectedSize {
		return fmt.Errorf("upload is %d bytes, grant was issued for %d", len(data), grant.ExpectedSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, grant.UploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", grant.ExpectedContentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
