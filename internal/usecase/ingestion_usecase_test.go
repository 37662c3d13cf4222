package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/internal/usecase"
	"go-whatscv-backend/pkg/logger"
	"go-whatscv-backend/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// Mock Repositories / Collaborators

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Reconcile(ctx context.Context, in domain.ReconcileInput) (int64, domain.ReconcileAction, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Get(1).(domain.ReconcileAction), args.Error(2)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.CandidateDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateDetail), args.Error(1)
}

func (m *MockCandidateRepo) Search(ctx context.Context, f domain.SearchFilter) ([]domain.CandidateDetail, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateDetail), args.Error(1)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchURL(ctx context.Context, url, dest string) error {
	args := m.Called(ctx, url, dest)
	if args.Error(0) == nil {
		// Simulate the real fetcher's side effect so cleanup is observable.
		_ = os.MkdirAll(filepath.Dir(dest), 0o755)
		_ = os.WriteFile(dest, []byte("%PDF-1.4 fake"), 0o644)
	}
	return args.Error(0)
}

func (m *MockFetcher) FetchMediaID(ctx context.Context, mediaID, dest string) error {
	args := m.Called(ctx, mediaID, dest)
	if args.Error(0) == nil {
		_ = os.MkdirAll(filepath.Dir(dest), 0o755)
		_ = os.WriteFile(dest, []byte("%PDF-1.4 fake"), 0o644)
	}
	return args.Error(0)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(path string) string {
	return m.Called(path).String(0)
}

type MockStructuredExtractor struct {
	mock.Mock
}

func (m *MockStructuredExtractor) Extract(ctx context.Context, paragraph, cvText string) domain.ExtractedFields {
	return m.Called(ctx, paragraph, cvText).Get(0).(domain.ExtractedFields)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendText(ctx context.Context, to, body string) error {
	return m.Called(ctx, to, body).Error(0)
}

type fixture struct {
	repo       *MockCandidateRepo
	fetcher    *MockFetcher
	text       *MockTextExtractor
	structured *MockStructuredExtractor
	notifier   *MockNotifier
	uploadDir  string
	uc         domain.IngestionUsecase
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		repo:       new(MockCandidateRepo),
		fetcher:    new(MockFetcher),
		text:       new(MockTextExtractor),
		structured: new(MockStructuredExtractor),
		notifier:   new(MockNotifier),
		uploadDir:  t.TempDir(),
	}
	f.uc = usecase.NewIngestionUsecase(
		f.repo, f.fetcher, f.text, f.structured, f.notifier,
		security.NewHasher("test-salt"), f.uploadDir,
	)
	return f
}

func strptr(s string) *string { return &s }

func TestHandleInboundTextOnly(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("SendText", mock.Anything, "+1000000000", usecase.ReplyGuidance).Return(nil)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindText,
		From:     "+1000000000",
		Body:     "hello, here is my background",
	})

	assert.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, usecase.ReplyGuidance, res.Reply)
	f.repo.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestHandleInboundOtherKind(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindOther,
		From:     "+1000000000",
	})

	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, res.Ignored)
	f.notifier.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestHandleInboundDocumentCreated(t *testing.T) {
	f := newFixture(t)

	fields := domain.SafeDefaultFields()
	fields.FullName = strptr("jane doe")

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).Return(nil)
	f.text.On("Extract", mock.Anything).Return("fake cv text")
	f.structured.On("Extract", mock.Anything, "hi", "fake cv text").Return(fields)
	f.repo.On("Reconcile", mock.Anything, mock.MatchedBy(func(in domain.ReconcileInput) bool {
		// Stored name stays exactly as extracted; formatting is reply-only.
		return in.Fields.FullName != nil && *in.Fields.FullName == "jane doe" &&
			in.TransportPhone != nil && *in.TransportPhone == "+1000000000" &&
			in.CVText == "fake cv text"
	})).Return(int64(7), domain.ActionCreated, nil)
	f.notifier.On("SendText", mock.Anything, "+1000000000", mock.MatchedBy(func(body string) bool {
		return body == "Thanks! Your CV was received and your candidate profile has been created, Jane Doe."
	})).Return(nil)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		Body:     "hi",
		MediaID:  "media-1",
		Filename: "cv.pdf",
	})

	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, domain.ActionCreated, res.Action)
	assert.Equal(t, int64(7), *res.CandidateID)
	assert.Contains(t, res.Reply, "Jane Doe")
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	assertScratchEmpty(t, f.uploadDir)
}

func TestHandleInboundDocumentUpdated(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchURL", mock.Anything, "https://media.example/cv", mock.Anything).Return(nil)
	f.text.On("Extract", mock.Anything).Return("")
	f.structured.On("Extract", mock.Anything, "", "").Return(domain.SafeDefaultFields())
	f.repo.On("Reconcile", mock.Anything, mock.Anything).Return(int64(3), domain.ActionUpdated, nil)
	f.notifier.On("SendText", mock.Anything, "+2000000000", usecase.ReplyUpdated).Return(nil)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderTwilio,
		Kind:     domain.KindDocument,
		From:     "+2000000000",
		MediaURL: "https://media.example/cv",
		Filename: "cv.docx",
	})

	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, domain.ActionUpdated, res.Action)
	// No extracted name: the fixed reply goes out untouched.
	assert.Equal(t, usecase.ReplyUpdated, res.Reply)
	assertScratchEmpty(t, f.uploadDir)
}

func TestHandleInboundMediaFailure(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).
		Return(&domain.MediaUnavailableError{Reason: "media fetch returned http 404"})
	f.notifier.On("SendText", mock.Anything, "+1000000000", usecase.ReplyFailure).Return(nil)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		MediaID:  "media-1",
		Filename: "cv.pdf",
	})

	assert.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, usecase.ReplyFailure, res.Reply)
	assert.Contains(t, res.Error, "media unavailable")
	f.repo.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	assertScratchEmpty(t, f.uploadDir)
}

func TestHandleInboundMissingCredential(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).
		Return(fmt.Errorf("whatsapp access token: %w", domain.ErrConfigMissing))

	_, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		MediaID:  "media-1",
	})

	// Misconfiguration is a hard failure, not a polite reply.
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
	f.notifier.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleInboundPersistenceFailure(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).Return(nil)
	f.text.On("Extract", mock.Anything).Return("")
	f.structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(domain.SafeDefaultFields())
	f.repo.On("Reconcile", mock.Anything, mock.Anything).
		Return(int64(0), domain.ReconcileAction(""), errors.New("failed to commit reconcile"))

	_, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		MediaID:  "media-1",
		Filename: "cv.pdf",
	})

	assert.Error(t, err)
	assertScratchEmpty(t, f.uploadDir)
}

func TestHandleInboundDegradedExtraction(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).Return(nil)
	f.text.On("Extract", mock.Anything).Return("")
	f.structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(domain.SafeDefaultFields())
	f.repo.On("Reconcile", mock.Anything, mock.MatchedBy(func(in domain.ReconcileInput) bool {
		return len(in.Fields.Education) == 0 && len(in.Fields.Experiences) == 0 &&
			in.Fields.FullName == nil && in.IDNumberHash == nil
	})).Return(int64(11), domain.ActionCreated, nil)
	f.notifier.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		MediaID:  "media-1",
		Filename: "cv.pdf",
	})

	assert.NoError(t, err)
	assert.True(t, res.OK)
	f.repo.AssertExpectations(t)
}

func TestHandleInboundNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)

	f.fetcher.On("FetchMediaID", mock.Anything, "media-1", mock.Anything).Return(nil)
	f.text.On("Extract", mock.Anything).Return("")
	f.structured.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(domain.SafeDefaultFields())
	f.repo.On("Reconcile", mock.Anything, mock.Anything).Return(int64(5), domain.ActionCreated, nil)
	f.notifier.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("provider down"))

	res, err := f.uc.HandleInbound(context.Background(), domain.InboundMessage{
		Provider: domain.ProviderWhatsAppCloud,
		Kind:     domain.KindDocument,
		From:     "+1000000000",
		MediaID:  "media-1",
		Filename: "cv.pdf",
	})

	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(5), *res.CandidateID)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", usecase.DisplayName(nil))
	assert.Equal(t, "", usecase.DisplayName(strptr("   ")))
	assert.Equal(t, "Jane Doe", usecase.DisplayName(strptr("jane doe")))
	assert.Equal(t, "Jane Doe", usecase.DisplayName(strptr("  jane \t doe ")))
	assert.Equal(t, "Jane Doe", usecase.DisplayName(strptr("JANE DOE")))
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "scratch file must be removed on every exit path")
}
