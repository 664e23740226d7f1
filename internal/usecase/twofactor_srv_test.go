package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"admin-2fa/internal/data/entity"
	"admin-2fa/internal/data/repository"
	"admin-2fa/internal/dto/request"
	"admin-2fa/internal/usecase"
	"admin-2fa/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEmail    = "admin@x.com"
	testPassword = "correct-pw"
)

// ---------- in-memory fakes ----------

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*entity.Admin // keyed by normalized email
	err    error
}

func (f *fakeAdminRepo) FindByEmail(_ context.Context, email string) (*entity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	admin, ok := f.admins[email]
	if !ok {
		return nil, nil
	}
	cp := *admin
	return &cp, nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entity.TwoFACode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: make(map[uuid.UUID]*entity.TwoFACode)}
}

func (f *fakeCodeRepo) Create(_ context.Context, code *entity.TwoFACode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *code
	f.codes[code.ID] = &cp
	return nil
}

func (f *fakeCodeRepo) FindLatestUnconsumed(_ context.Context, adminID uuid.UUID) (*entity.TwoFACode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *entity.TwoFACode
	for _, c := range f.codes {
		if c.AdminID != adminID || c.Consumed {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// Consume mirrors the SQL conditional UPDATE: it applies only while the code
// is unconsumed and unexpired, atomically under the repo lock.
func (f *fakeCodeRepo) Consume(_ context.Context, codeID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[codeID]
	if !ok || c.Consumed || !c.ExpiresAt.After(now) {
		return false, nil
	}
	c.Consumed = true
	return true, nil
}

func (f *fakeCodeRepo) DeleteByAdmin(_ context.Context, adminID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.codes {
		if c.AdminID == adminID {
			delete(f.codes, id)
		}
	}
	return nil
}

func (f *fakeCodeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, c := range f.codes {
		if !c.ExpiresAt.After(now) {
			delete(f.codes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeCodeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

func (f *fakeCodeRepo) expireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		c.ExpiresAt = time.Now().Add(-time.Second)
	}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, _, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway unreachable")
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// ---------- helpers ----------

func newTestEnv(t *testing.T, directReturn bool, notif *fakeNotifier) (usecase.TwoFactorService, *fakeCodeRepo) {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	admins := &fakeAdminRepo{admins: map[string]*entity.Admin{
		testEmail: {
			Base:         entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			Email:        testEmail,
			PasswordHash: hash,
			IsActive:     true,
		},
	}}
	codes := newFakeCodeRepo()

	repo := &repository.Repository{Admin: admins, TwoFACode: codes}
	config := &utils.Config{
		TwoFA:    utils.TwoFAConfig{TTLSeconds: 300, DirectReturn: directReturn},
		WhatsApp: utils.WhatsAppConfig{AdminPhone: "5511999999999"},
	}

	service := usecase.NewService(repo, config, zap.NewNop(), notif)
	return service.TwoFactor, codes
}

func beginLogin(t *testing.T, svc usecase.TwoFactorService) string {
	t.Helper()
	resp, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Len(t, resp.Code, 6, "direct-return response should carry the 6-digit code")
	require.Equal(t, 300, resp.ExpiresInSec)
	return resp.Code
}

// ---------- tests ----------

func TestBeginAndCompleteLogin(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{})

	code := beginLogin(t, svc)

	resp, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: code})
	require.NoError(t, err)
	require.True(t, resp.Verified)

	// Replaying the same code must lose
	_, err = svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: code})
	require.Error(t, err)
	require.True(t, errors.Is(err, usecase.ErrCodeNotFound) || errors.Is(err, usecase.ErrCodeAlreadyConsumed),
		"replay should report consumed or gone, got: %v", err)
}

func TestCompleteLoginNormalizesEmail(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{})

	code := beginLogin(t, svc)

	resp, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: "  ADMIN@X.COM ", Code: code})
	require.NoError(t, err)
	require.True(t, resp.Verified)
}

func TestCompleteLoginExpiredCode(t *testing.T) {
	svc, codes := newTestEnv(t, true, &fakeNotifier{})

	code := beginLogin(t, svc)
	codes.expireAll()

	_, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: code})
	require.ErrorIs(t, err, usecase.ErrCodeExpired)

	// Expiry is terminal: the same code stays dead
	_, err = svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: code})
	require.ErrorIs(t, err, usecase.ErrCodeExpired)
}

func TestCompleteLoginMismatchDoesNotConsume(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{})

	code := beginLogin(t, svc)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: wrong})
	require.ErrorIs(t, err, usecase.ErrCodeMismatch)

	// The real code must still work after a mismatch
	resp, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: code})
	require.NoError(t, err)
	require.True(t, resp.Verified)
}

func TestCompleteLoginNoPendingCode(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{})

	_, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: "123456"})
	require.ErrorIs(t, err, usecase.ErrCodeNotFound)
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	svc, codes := newTestEnv(t, true, &fakeNotifier{})

	first := beginLogin(t, svc)
	second := beginLogin(t, svc)
	require.Equal(t, 1, codes.count(), "re-issuance should supersede the previous code")

	if first != second {
		_, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: first})
		require.ErrorIs(t, err, usecase.ErrCodeMismatch)
	}

	resp, err := svc.CompleteLogin(t.Context(), &request.VerifyCodeRequest{Email: testEmail, Code: second})
	require.NoError(t, err)
	require.True(t, resp.Verified)
}

func TestBeginLoginWrongPasswordIssuesNothing(t *testing.T) {
	notif := &fakeNotifier{}
	svc, codes := newTestEnv(t, true, notif)

	_, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: testEmail, Password: "wrong-pw"})
	require.ErrorIs(t, err, usecase.ErrNotAuthenticated)
	require.Zero(t, codes.count(), "no code row may be created on a failed password check")
	require.Zero(t, notif.sentCount(), "the notifier must not be called on a failed password check")
}

func TestBeginLoginUnknownEmailSameError(t *testing.T) {
	notif := &fakeNotifier{}
	svc, codes := newTestEnv(t, true, notif)

	_, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: "nobody@x.com", Password: testPassword})
	require.ErrorIs(t, err, usecase.ErrNotAuthenticated,
		"unknown email and wrong password must be indistinguishable")
	require.Zero(t, codes.count())
	require.Zero(t, notif.sentCount())
}

func TestBeginLoginInvalidInput(t *testing.T) {
	notif := &fakeNotifier{}
	svc, codes := newTestEnv(t, true, notif)

	_, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: "not-an-email", Password: "x"})
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
	require.Zero(t, codes.count())
}

func TestBeginLoginDeliveryFailureIsFatalInProduction(t *testing.T) {
	svc, codes := newTestEnv(t, false, &fakeNotifier{fail: true})

	_, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: testEmail, Password: testPassword})
	require.ErrorIs(t, err, usecase.ErrDeliveryFailed)
	// The code was persisted before delivery was attempted
	require.Equal(t, 1, codes.count())
}

func TestBeginLoginDeliveryFailureNonFatalInDirectReturn(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{fail: true})

	resp, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Len(t, resp.Code, 6)
}

func TestBeginLoginProductionHidesCode(t *testing.T) {
	notif := &fakeNotifier{}
	svc, _ := newTestEnv(t, false, notif)

	resp, err := svc.BeginLogin(t.Context(), &request.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Empty(t, resp.Code, "production responses must not leak the code")
	require.Equal(t, 1, notif.sentCount())
}

func TestConcurrentCompleteLoginSingleWinner(t *testing.T) {
	svc, _ := newTestEnv(t, true, &fakeNotifier{})

	code := beginLogin(t, svc)

	const racers = 8
	results := make(chan error, racers)

	var start sync.WaitGroup
	start.Add(1)
	for range racers {
		go func() {
			start.Wait()
			_, err := svc.CompleteLogin(context.Background(),
				&request.VerifyCodeRequest{Email: testEmail, Code: code})
			results <- err
		}()
	}
	start.Done()

	var wins, losses int
	for range racers {
		err := <-results
		if err == nil {
			wins++
			continue
		}
		losses++
		require.True(t,
			errors.Is(err, usecase.ErrCodeAlreadyConsumed) || errors.Is(err, usecase.ErrCodeNotFound),
			"loser must see consumed or gone, got: %v", err)
	}

	require.Equal(t, 1, wins, "exactly one concurrent verify may succeed")
	require.Equal(t, racers-1, losses)
}

func TestCleanupSweepsExpiredCodes(t *testing.T) {
	svc, codes := newTestEnv(t, true, &fakeNotifier{})

	beginLogin(t, svc)
	codes.expireAll()

	cleanup := usecase.NewCleanupService(codes, zap.NewNop(), time.Hour)
	cleanup.Start()
	cleanup.Stop() // Start runs one sweep immediately; Stop waits for it

	require.Zero(t, codes.count(), "expired codes should be swept")
}
