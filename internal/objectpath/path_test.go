package objectpath

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func stubMintSeams(t *testing.T, ts int64, nonce string) {
	t.Helper()
	origNow, origNonce := nowFunc, newNonce
	nowFunc = func() time.Time { return time.Unix(ts, 0) }
	newNonce = func() string { return nonce }
	t.Cleanup(func() {
		nowFunc, newNonce = origNow, origNonce
	})
}

func TestMint(t *testing.T) {
	stubMintSeams(t, 1700000000, "3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11")

	tests := []struct {
		name        string
		ownerID     string
		purpose     Purpose
		contentType string
		size        int64
		want        string
		wantReason  string
	}{
		{
			name:        "profile jpeg",
			ownerID:     "u-100",
			purpose:     PurposeProfile,
			contentType: "image/jpeg",
			size:        1024,
			want:        "/users/u-100/profile-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.jpg",
		},
		{
			name:        "resume pdf",
			ownerID:     "u-100",
			purpose:     PurposeResume,
			contentType: "application/pdf",
			size:        5 << 20,
			want:        "/users/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf",
		},
		{
			name:        "requirement docx",
			ownerID:     "emp-7",
			purpose:     PurposeRequirement,
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			size:        100,
			want:        "/users/emp-7/requirement-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.docx",
		},
		{
			name:        "unknown purpose",
			ownerID:     "u-100",
			purpose:     Purpose("banner"),
			contentType: "image/png",
			size:        10,
			wantReason:  "unknown purpose",
		},
		{
			name:        "content type not allowed for purpose",
			ownerID:     "u-100",
			purpose:     PurposeProfile,
			contentType: "application/pdf",
			size:        10,
			wantReason:  "not allowed for purpose",
		},
		{
			name:        "content type unknown everywhere",
			ownerID:     "u-100",
			purpose:     PurposeResume,
			contentType: "application/zip",
			size:        10,
			wantReason:  "not allowed for purpose",
		},
		{
			name:        "zero size",
			ownerID:     "u-100",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        0,
			wantReason:  "must be positive",
		},
		{
			name:        "negative size",
			ownerID:     "u-100",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        -5,
			wantReason:  "must be positive",
		},
		{
			name:        "over profile limit",
			ownerID:     "u-100",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        5<<20 + 1,
			wantReason:  "exceeds limit",
		},
		{
			name:        "over resume limit",
			ownerID:     "u-100",
			purpose:     PurposeResume,
			contentType: "application/pdf",
			size:        10<<20 + 1,
			wantReason:  "exceeds limit",
		},
		{
			name:        "owner id with slash",
			ownerID:     "u-100/evil",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        10,
			wantReason:  "not a valid path segment",
		},
		{
			name:        "owner id with traversal",
			ownerID:     "..",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        10,
			wantReason:  "not a valid path segment",
		},
		{
			name:        "empty owner id",
			ownerID:     "",
			purpose:     PurposeProfile,
			contentType: "image/png",
			size:        10,
			wantReason:  "not a valid path segment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Mint(tt.ownerID, tt.purpose, tt.contentType, tt.size)

			if tt.wantReason != "" {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if !strings.Contains(verr.Reason, tt.wantReason) {
					t.Errorf("reason %q does not contain %q", verr.Reason, tt.wantReason)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.String() != tt.want {
				t.Errorf("path = %q, want %q", p.String(), tt.want)
			}
			if p.Owner() != tt.ownerID {
				t.Errorf("owner = %q, want %q", p.Owner(), tt.ownerID)
			}
			if p.Purpose() != tt.purpose {
				t.Errorf("purpose = %q, want %q", p.Purpose(), tt.purpose)
			}
		})
	}
}

func TestMintThenParseRoundTrip(t *testing.T) {
	minted, err := Mint("u-42", PurposeResume, "application/pdf", 2048)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	parsed, err := Parse(minted.String())
	if err != nil {
		t.Fatalf("parse of minted path: %v", err)
	}
	if parsed.Owner() != "u-42" || parsed.Purpose() != PurposeResume {
		t.Errorf("parsed = %+v, want owner u-42 purpose resume", parsed)
	}
	if parsed.String() != minted.String() {
		t.Errorf("round trip changed path: %q vs %q", parsed.String(), minted.String())
	}
}

func TestParse(t *testing.T) {
	valid := "/users/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf"

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "canonical resume path", raw: valid, ok: true},
		{name: "canonical profile path", raw: "/users/abc/profile-1-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.webp", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "missing leading slash", raw: strings.TrimPrefix(valid, "/"), ok: false},
		{name: "traversal in owner", raw: "/users/../resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "traversal after valid prefix", raw: valid + "/../x.pdf", ok: false},
		{name: "backslash", raw: "/users/u-100\\x/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "null byte", raw: "/users/u-100\x00/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "wrong root", raw: "/files/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "unknown purpose", raw: "/users/u-100/banner-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "missing nonce", raw: "/users/u-100/resume-1700000000.pdf", ok: false},
		{name: "nonce not a uuid", raw: "/users/u-100/resume-1700000000-nonce.pdf", ok: false},
		{name: "unknown extension", raw: "/users/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.exe", ok: false},
		{name: "extension wrong for purpose", raw: "/users/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.png", ok: false},
		{name: "profile with pdf extension", raw: "/users/u-100/profile-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "extra segment", raw: "/users/u-100/extra/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", ok: false},
		{name: "query suffix", raw: valid + "?x=1", ok: false},
		{name: "uppercase extension", raw: "/users/u-100/resume-1700000000-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.PDF", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)

			if !tt.ok {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError for %q, got %v", tt.raw, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.raw, err)
			}
			if p.String() != tt.raw {
				t.Errorf("String() = %q, want %q", p.String(), tt.raw)
			}
		})
	}
}

func TestPathKey(t *testing.T) {
	p, err := Parse("/users/u-1/profile-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.png")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.Key(); got != "users/u-1/profile-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.png" {
		t.Errorf("Key() = %q", got)
	}
}

func TestPathContentType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/users/u-1/profile-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.jpg", "image/jpeg"},
		{"/users/u-1/profile-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.png", "image/png"},
		{"/users/u-1/resume-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.pdf", "application/pdf"},
		{"/users/u-1/resume-5-3f2f9e1a-6a0f-4f86-9d3c-0b5d2f6a7c11.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}

	for _, tt := range tests {
		p, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.raw, err)
		}
		if got := p.ContentType(); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestMaxSize(t *testing.T) {
	if got := MaxSize(PurposeProfile); got != 5<<20 {
		t.Errorf("profile max = %d, want %d", got, 5<<20)
	}
	if got := MaxSize(PurposeResume); got != 10<<20 {
		t.Errorf("resume max = %d, want %d", got, 10<<20)
	}
	if got := MaxSize(Purpose("banner")); got != 0 {
		t.Errorf("unknown purpose max = %d, want 0", got)
	}
}
