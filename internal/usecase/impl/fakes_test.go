package impl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whisper/internal/domain/entity"
	"whisper/internal/domain/repository"
	"whisper/internal/domain/service"

	"github.com/google/uuid"
)

// Test-only fakes implementing the repository and service interfaces.
// They store state in mutex-guarded maps and expose error fields for
// behavior injection.

type fakeAccountRepo struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]*entity.Account
	order     []uuid.UUID
	createErr error
	findErr   error
	updateErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*entity.Account)}
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	account, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := *account

	return &copied, nil
}

func (f *fakeAccountRepo) FindWithSecrets(_ context.Context) ([]*entity.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*entity.Account
	for _, id := range f.order {
		account := f.accounts[id]
		if account.HasSecret() {
			copied := *account
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (f *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	f.accounts[account.ID] = &copied
	f.order = append(f.order, account.ID)

	return nil
}

func (f *fakeAccountRepo) UpdateSecret(_ context.Context, id uuid.UUID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.Secret = &secret
	account.UpdatedAt = time.Now()

	return nil
}

func (f *fakeAccountRepo) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.accounts)
}

type authKey struct {
	provider  entity.Provider
	subjectID string
}

type fakeAuthRepo struct {
	mu        sync.RWMutex
	records   map[authKey]*entity.Authentication
	createErr error
	findErr   error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{records: make(map[authKey]*entity.Authentication)}
}

// CreateAuthentication enforces the (provider, subject id) uniqueness the
// real store guarantees with its unique index.
func (f *fakeAuthRepo) CreateAuthentication(_ context.Context, auth *entity.Authentication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	key := authKey{provider: auth.Provider, subjectID: auth.SubjectID}
	if _, exists := f.records[key]; exists {
		return repository.ErrAuthConflict
	}
	auth.ID = uuid.New()
	auth.CreatedAt = time.Now()
	copied := *auth
	f.records[key] = &copied

	return nil
}

func (f *fakeAuthRepo) FindAuthentication(_ context.Context, provider entity.Provider, subjectID string) (*entity.Authentication, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	record, ok := f.records[authKey{provider: provider, subjectID: subjectID}]
	if !ok {
		return nil, repository.ErrAuthNotFound
	}
	copied := *record

	return &copied, nil
}

func (f *fakeAuthRepo) ListAuthenticationsByAccountID(_ context.Context, accountID uuid.UUID) ([]*entity.Authentication, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*entity.Authentication
	for _, record := range f.records {
		if record.AccountID == accountID {
			copied := *record
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (f *fakeAuthRepo) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.records)
}

type fakeSessionRepo struct {
	mu        sync.RWMutex
	sessions  map[string]*entity.Session
	createErr error
	deleteErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, session *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	copied := *session
	f.sessions[session.TokenHash] = &copied

	return nil
}

func (f *fakeSessionRepo) FindSessionByHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	session, ok := f.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *session

	return &copied, nil
}

func (f *fakeSessionRepo) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sessions, tokenHash)

	return nil
}

func (f *fakeSessionRepo) DeleteSessionsByAccountID(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for hash, session := range f.sessions {
		if session.AccountID == accountID {
			delete(f.sessions, hash)
		}
	}

	return nil
}

func (f *fakeSessionRepo) DeleteExpiredSessions(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for hash, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, hash)
		}
	}

	return nil
}

func (f *fakeSessionRepo) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.sessions)
}

// fakeRepoFactory hands the same fakes out for direct and transactional use.
type fakeRepoFactory struct {
	accounts *fakeAccountRepo
	auths    *fakeAuthRepo
	sessions *fakeSessionRepo
}

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository { return f.accounts }
func (f *fakeRepoFactory) AuthRepo() repository.AuthRepository       { return f.auths }
func (f *fakeRepoFactory) SessionRepo() repository.SessionRepository { return f.sessions }

type fakeTxManager struct {
	factory *fakeRepoFactory
	execErr error
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if f.execErr != nil {
		return f.execErr
	}

	return fn(f.factory)
}

// fakeHasher is a deterministic stand-in for bcrypt.
type fakeHasher struct {
	hashErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}

	return "hashed:" + password, nil
}

func (f *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService mints predictable tokens.
type fakeTokenService struct {
	mu          sync.Mutex
	counter     int
	validateErr error
	duration    time.Duration
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{duration: time.Hour}
}

func (f *fakeTokenService) GenerateToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++

	return fmt.Sprintf("token-%d", f.counter), nil
}

func (f *fakeTokenService) ValidateToken(_ string) error {
	return f.validateErr
}

func (f *fakeTokenService) HashToken(token string) string {
	return "hash:" + token
}

func (f *fakeTokenService) SessionDuration() time.Duration {
	return f.duration
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.AccountEvent
}

func (f *fakePublisher) PublishAccountEvent(_ context.Context, event *service.AccountEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *event
	f.events = append(f.events, &copied)

	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Kind)
	}

	return out
}
