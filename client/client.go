// Package client is a small HTTP client for services that integrate with
// filegate: request an upload grant, push the bytes to the grant URL, commit
// an access policy and fetch object streams.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Purpose selects the upload endpoint and with it the server-side
// content-type and size rules.
type Purpose string

const (
	PurposeProfile     Purpose = "profile"
	PurposeResume      Purpose = "resume"
	PurposeRequirement Purpose = "requirement"
)

// UploadGrant is the server's answer to an upload request. The URL is
// short-lived and only accepts the declared content type and size.
type UploadGrant struct {
	ObjectPath          string    `json:"objectPath"`
	UploadURL           string    `json:"uploadUrl"`
	ExpectedContentType string    `json:"expectedContentType"`
	ExpectedSize        int64     `json:"expectedSize"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// Policy is the access record of one committed object.
type Policy struct {
	ObjectPath string    `json:"objectPath"`
	OwnerID    string    `json:"ownerId"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Object is a fetched object stream. The caller must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// APIError carries a non-200 response from the filegate API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("filegate: %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New returns a client for the filegate API at baseURL, authenticating
// every call with the given bearer token.
func New(baseURL string, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func grantEndpoint(p Purpose) (string, error) {
	switch p {
	case PurposeProfile:
		return "/api/objects/upload", nil
	case PurposeResume:
		return "/api/objects/upload-resume", nil
	case PurposeRequirement:
		return "/api/objects/upload-document", nil
	default:
		return "", fmt.Errorf("unknown purpose %q", p)
	}
}

// RequestUploadGrant asks for a presigned upload URL for one file of the
// given purpose, content type and exact size.
func (c *Client) RequestUploadGrant(ctx context.Context, purpose Purpose, contentType string, size int64) (*UploadGrant, error) {
	endpoint, err := grantEndpoint(purpose)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"contentType": contentType, "fileSize": size}
	var grant UploadGrant
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Commit attaches the access policy for an object the caller just uploaded.
// Visibility is "public" or "private".
func (c *Client) Commit(ctx context.Context, objectPath string, visibility string) (*Policy, error) {
	body := map[string]any{"objectPath": objectPath, "visibility": visibility}
	var policy Policy
	if err := c.doJSON(ctx, http.MethodPost, "/api/objects/commit", body, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetPolicy returns the policy of one object. Only the owner and admins can
// see it; everyone else gets a 404 APIError.
func (c *Client) GetPolicy(ctx context.Context, objectPath string) (*Policy, error) {
	var policy Policy
	if err := c.doJSON(ctx, http.MethodGet, "/api/objects/policy?path="+objectPath, nil, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Fetch streams one object. A deny, a missing object and a malformed path
// all come back as a 404 APIError.
func (c *Client) Fetch(ctx context.Context, objectPath string) (*Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/objects"+objectPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiErrorFrom(resp)
	}

	return &Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiErrorFrom(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func apiErrorFrom(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &e); err != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(b))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
}
