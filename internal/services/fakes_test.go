package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"artemis/internal/models"
	"artemis/internal/repositories"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeProfiles is an in-memory profiles table keyed by email.
type fakeProfiles struct {
	mu       sync.Mutex
	byEmail  map[string]*models.Profile
	getErr   error
	setErr   error
	clearErr error
	setCalls int
}

func newFakeProfiles(profiles ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{byEmail: map[string]*models.Profile{}}
	for _, p := range profiles {
		f.byEmail[p.Email] = p
	}
	return f
}

func copyProfile(p *models.Profile) *models.Profile {
	cp := *p
	if p.ResetCode != nil {
		code := *p.ResetCode
		cp.ResetCode = &code
	}
	if p.ResetCodeExpires != nil {
		exp := *p.ResetCodeExpires
		cp.ResetCodeExpires = &exp
	}
	return &cp
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyProfile(p), nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byEmail {
		if p.ID == id {
			return copyProfile(p), nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) Create(_ context.Context, _ *sql.Tx, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[p.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	f.byEmail[p.Email] = copyProfile(p)
	return nil
}

func (f *fakeProfiles) find(id uuid.UUID) *models.Profile {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakeProfiles) SetResetCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	p := f.find(id)
	if p == nil {
		return repositories.ErrNotFound
	}
	p.ResetCode, p.ResetCodeExpires = &code, &expiresAt
	return nil
}

func (f *fakeProfiles) ClearResetCode(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	p := f.find(id)
	if p == nil {
		return repositories.ErrNotFound
	}
	p.ResetCode, p.ResetCodeExpires = nil, nil
	return nil
}

func (f *fakeProfiles) stored(email string) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyProfile(f.byEmail[email])
}

// fakeAuthUsers keeps hashes by id; BeginTx needs a db (sqlmock) when exercised.
type fakeAuthUsers struct {
	db        *sql.DB
	byID      map[uuid.UUID]string
	byEmail   map[string]*models.AuthUser
	createErr error
}

func newFakeAuthUsers() *fakeAuthUsers {
	return &fakeAuthUsers{byID: map[uuid.UUID]string{}, byEmail: map[string]*models.AuthUser{}}
}

func (f *fakeAuthUsers) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if f.db == nil {
		return nil, errors.New("no db")
	}
	return f.db.BeginTx(ctx, nil)
}

func (f *fakeAuthUsers) Create(_ context.Context, _ *sql.Tx, u *models.AuthUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	f.byID[u.ID] = u.PasswordHash
	return nil
}

func (f *fakeAuthUsers) GetByEmail(_ context.Context, email string) (*models.AuthUser, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.PasswordHash = f.byID[u.ID]
	return &cp, nil
}

func (f *fakeAuthUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[id] = hash
	return nil
}

type sentCode struct {
	To, Name, Code string
	TTL            time.Duration
}

type recordingEmails struct {
	codes   []sentCode
	welcome []string
	err     error
}

func (r *recordingEmails) SendPasswordResetCode(_ context.Context, to, name, code string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.codes = append(r.codes, sentCode{To: to, Name: name, Code: code, TTL: ttl})
	return nil
}

func (r *recordingEmails) SendWelcomeEmail(_ context.Context, to, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.welcome = append(r.welcome, to)
	return nil
}

func (r *recordingEmails) lastCode() string {
	if len(r.codes) == 0 {
		return ""
	}
	return r.codes[len(r.codes)-1].Code
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

type recordingAlerts struct {
	texts []string
}

func (a *recordingAlerts) Notify(_ context.Context, text string) {
	a.texts = append(a.texts, text)
}
