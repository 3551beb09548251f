package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/workhive/filegate/internal/access"
	"github.com/workhive/filegate/internal/auth"
	"github.com/workhive/filegate/internal/common"
	"github.com/workhive/filegate/internal/models"
)

// memStore keeps uploaded bytes in a map so the whole grant-upload-commit-read
// cycle runs in process.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) PresignPut(ctx context.Context, key string, contentType string, contentLength int64, ttl time.Duration) (string, error) {
	return "https://store.test/put/" + key, nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, 0, common.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *memStore) put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

// memPolicyRepo mirrors the write-once-owner upsert of the SQL repository.
type memPolicyRepo struct {
	mu   sync.Mutex
	rows map[string]*models.ObjectPolicy
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{rows: map[string]*models.ObjectPolicy{}}
}

func (m *memPolicyRepo) Attach(ctx context.Context, policy *models.ObjectPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[policy.Path]; ok {
		if existing.OwnerID != policy.OwnerID {
			return common.ErrOwnershipConflict
		}
		existing.Visibility = policy.Visibility
		existing.UpdatedAt = time.Now()
		return nil
	}
	now := time.Now()
	m.rows[policy.Path] = &models.ObjectPolicy{
		Path:       policy.Path,
		OwnerID:    policy.OwnerID,
		Visibility: policy.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

func (m *memPolicyRepo) GetByPath(ctx context.Context, path string) (*models.ObjectPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.rows[path]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *policy
	return &cp, nil
}

// memAppsRepo holds live application facts keyed by resume path and employer.
type memAppsRepo struct {
	mu    sync.Mutex
	facts map[string]bool
}

func newMemAppsRepo() *memAppsRepo {
	return &memAppsRepo{facts: map[string]bool{}}
}

func (m *memAppsRepo) key(resumePath, employerID string) string {
	return resumePath + "|" + employerID
}

func (m *memAppsRepo) ResumeSharedWithEmployer(ctx context.Context, resumePath string, employerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.facts[m.key(resumePath, employerID)], nil
}

func (m *memAppsRepo) apply(resumePath, employerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[m.key(resumePath, employerID)] = true
}

func (m *memAppsRepo) withdraw(resumePath, employerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.facts, m.key(resumePath, employerID))
}

func TestResumeSharingFlow(t *testing.T) {
	store := newMemStore()
	policyRepo := newMemPolicyRepo()
	appsRepo := newMemAppsRepo()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// One transaction per successful commit: the first attach and the
	// visibility flip.
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	engine := access.NewEngine(policyRepo, access.NewEmployerApplicantResume(appsRepo))
	svc := NewObjectService(db, &fakeRepoManager{policyRepo: policyRepo, appRepo: appsRepo}, store, engine, newTestConfig(), noopLogger{})

	ctx := context.Background()
	seeker := auth.Principal{ID: "u-100", Role: auth.RoleSeeker}
	employer := auth.Principal{ID: "emp-7", Role: auth.RoleEmployer}
	otherEmployer := auth.Principal{ID: "emp-8", Role: auth.RoleEmployer}
	admin := auth.Principal{ID: "staff-1", Role: auth.RoleAdmin}

	// Seeker asks for an upload grant.
	grant, err := svc.CreateUploadGrant(ctx, seeker, "resume", "application/pdf", 4)
	if err != nil {
		t.Fatalf("CreateUploadGrant: %v", err)
	}

	// Committing before the upload lands must fail.
	if _, err := svc.AttachPolicy(ctx, seeker, grant.ObjectPath, "private"); !errors.Is(err, common.ErrObjectNotFound) {
		t.Fatalf("commit before upload: err = %v, want ErrObjectNotFound", err)
	}

	// Client PUTs the bytes via the presigned URL.
	store.put(grant.ObjectPath[1:], []byte("%PDF"))

	if _, err := svc.AttachPolicy(ctx, seeker, grant.ObjectPath, "private"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}

	// Owner reads their own resume.
	dl, err := svc.Fetch(ctx, seeker, grant.ObjectPath)
	if err != nil {
		t.Fatalf("owner fetch: %v", err)
	}
	data, _ := io.ReadAll(dl.Body)
	dl.Body.Close()
	if string(data) != "%PDF" {
		t.Fatalf("owner read body = %q", string(data))
	}

	// No application yet: the employer is a stranger.
	if _, err := svc.Fetch(ctx, employer, grant.ObjectPath); !errors.Is(err, common.ErrObjectNotFound) {
		t.Fatalf("employer fetch without application: err = %v, want ErrObjectNotFound", err)
	}

	// The seeker applies to one of the employer's postings with this resume.
	appsRepo.apply(grant.ObjectPath, employer.ID)

	dl, err = svc.Fetch(ctx, employer, grant.ObjectPath)
	if err != nil {
		t.Fatalf("employer fetch with application: %v", err)
	}
	dl.Body.Close()

	// A different employer still sees nothing.
	if _, err := svc.Fetch(ctx, otherEmployer, grant.ObjectPath); !errors.Is(err, common.ErrObjectNotFound) {
		t.Fatalf("unrelated employer fetch: err = %v, want ErrObjectNotFound", err)
	}

	// Withdrawal revokes access on the very next request.
	appsRepo.withdraw(grant.ObjectPath, employer.ID)
	if _, err := svc.Fetch(ctx, employer, grant.ObjectPath); !errors.Is(err, common.ErrObjectNotFound) {
		t.Fatalf("employer fetch after withdrawal: err = %v, want ErrObjectNotFound", err)
	}

	// Admin reads regardless.
	dl, err = svc.Fetch(ctx, admin, grant.ObjectPath)
	if err != nil {
		t.Fatalf("admin fetch: %v", err)
	}
	dl.Body.Close()

	// Another user cannot take over the path.
	intruder := auth.Principal{ID: "u-200", Role: auth.RoleSeeker}
	if _, err := svc.AttachPolicy(ctx, intruder, grant.ObjectPath, "public"); !errors.Is(err, common.ErrOwnershipConflict) {
		t.Fatalf("intruder commit: err = %v, want ErrOwnershipConflict", err)
	}

	// Owner may flip visibility; then anyone authenticated reads.
	if _, err := svc.AttachPolicy(ctx, seeker, grant.ObjectPath, "public"); err != nil {
		t.Fatalf("visibility flip: %v", err)
	}
	dl, err = svc.Fetch(ctx, otherEmployer, grant.ObjectPath)
	if err != nil {
		t.Fatalf("public fetch: %v", err)
	}
	dl.Body.Close()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConcurrentFirstCommit_OneOwnerWins(t *testing.T) {
	store := newMemStore()
	policyRepo := newMemPolicyRepo()
	appsRepo := newMemAppsRepo()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 8; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	engine := access.NewEngine(policyRepo, access.NewEmployerApplicantResume(appsRepo))
	svc := NewObjectService(db, &fakeRepoManager{policyRepo: policyRepo, appRepo: appsRepo}, store, engine, newTestConfig(), noopLogger{})

	ctx := context.Background()
	owner := auth.Principal{ID: "u-1", Role: auth.RoleSeeker}

	grant, err := svc.CreateUploadGrant(ctx, owner, "resume", "application/pdf", 4)
	if err != nil {
		t.Fatalf("CreateUploadGrant: %v", err)
	}
	store.put(grant.ObjectPath[1:], []byte("%PDF"))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			visibility := "private"
			if i%2 == 0 {
				visibility = "public"
			}
			_, errs[i] = svc.AttachPolicy(ctx, owner, grant.ObjectPath, visibility)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("owner attach %d failed: %v", i, err)
		}
	}

	policy, err := policyRepo.GetByPath(ctx, grant.ObjectPath)
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if policy.OwnerID != owner.ID {
		t.Fatalf("owner = %q, want %q", policy.OwnerID, owner.ID)
	}
	if policy.Visibility != models.VisibilityPublic && policy.Visibility != models.VisibilityPrivate {
		t.Fatalf("visibility = %q", policy.Visibility)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
