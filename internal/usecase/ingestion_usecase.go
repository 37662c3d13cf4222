package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/logger"
	"go-whatscv-backend/pkg/security"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The four fixed user-facing replies. Everything the sender ever sees is
// one of these, optionally with their extracted name appended.
const (
	ReplyGuidance = "Please attach your CV as a document and we will take it from there."
	ReplyCreated  = "Thanks! Your CV was received and your candidate profile has been created."
	ReplyUpdated  = "Thanks! Your new CV was received and your candidate profile has been updated."
	ReplyFailure  = "Sorry, we could not process your document. Please try sending it again."
)

type ingestionUsecase struct {
	repo       domain.CandidateRepository
	fetcher    domain.MediaFetcher
	text       domain.TextExtractor
	structured domain.StructuredExtractor
	notifier   domain.Notifier
	hasher     *security.Hasher
	uploadDir  string
}

func NewIngestionUsecase(
	repo domain.CandidateRepository,
	fetcher domain.MediaFetcher,
	text domain.TextExtractor,
	structured domain.StructuredExtractor,
	notifier domain.Notifier,
	hasher *security.Hasher,
	uploadDir string,
) domain.IngestionUsecase {
	return &ingestionUsecase{
		repo:       repo,
		fetcher:    fetcher,
		text:       text,
		structured: structured,
		notifier:   notifier,
		hasher:     hasher,
		uploadDir:  uploadDir,
	}
}

// HandleInbound runs one inbound event through the reply state machine:
// classify, fetch, extract, reconcile, acknowledge. Provider failures on
// the document path become the fixed failure reply; persistence and
// configuration failures propagate as hard errors.
func (u *ingestionUsecase) HandleInbound(ctx context.Context, msg domain.InboundMessage) (*domain.IngestionResult, error) {
	switch msg.Kind {
	case domain.KindDocument:
		return u.handleDocument(ctx, msg)
	case domain.KindText:
		// No document attached: guidance reply, nothing persisted.
		u.notify(ctx, msg.From, ReplyGuidance)
		return &domain.IngestionResult{OK: false, Reply: ReplyGuidance}, nil
	default:
		// Stickers, audio, reactions... acknowledged and dropped silently.
		logger.Log.Debug("ignoring inbound message", "provider", msg.Provider, "kind", msg.Kind)
		return &domain.IngestionResult{OK: true, Ignored: true}, nil
	}
}

func (u *ingestionUsecase) handleDocument(ctx context.Context, msg domain.InboundMessage) (*domain.IngestionResult, error) {
	dest := u.scratchPath(msg.Filename)
	// The scratch file goes away on every exit path of the document branch.
	defer os.Remove(dest)

	var err error
	if msg.MediaURL != "" {
		err = u.fetcher.FetchURL(ctx, msg.MediaURL, dest)
	} else {
		err = u.fetcher.FetchMediaID(ctx, msg.MediaID, dest)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConfigMissing) {
			return nil, err
		}
		logger.Log.Warn("media fetch failed", "provider", msg.Provider, "error", err)
		u.notify(ctx, msg.From, ReplyFailure)
		return &domain.IngestionResult{OK: false, Reply: ReplyFailure, Error: err.Error()}, nil
	}

	// Both extraction stages absorb their own failures: empty text and the
	// safe-default fields keep the pipeline moving.
	cvText := u.text.Extract(dest)
	fields := u.structured.Extract(ctx, msg.Body, cvText)

	var transportPhone *string
	if msg.From != "" {
		transportPhone = &msg.From
	}

	candidateID, action, err := u.repo.Reconcile(ctx, domain.ReconcileInput{
		Fields:         fields,
		RawParagraph:   msg.Body,
		TransportPhone: transportPhone,
		CVText:         cvText,
		IDNumberHash:   u.hasher.HashSensitive(fields.IDNumber),
	})
	if err != nil {
		return nil, err
	}

	reply := ReplyCreated
	if action == domain.ActionUpdated {
		reply = ReplyUpdated
	}
	if name := DisplayName(fields.FullName); name != "" {
		reply = strings.TrimSuffix(reply, ".") + ", " + name + "."
	}

	u.notify(ctx, msg.From, reply)

	logger.Log.Info("candidate reconciled",
		"candidate_id", candidateID,
		"action", action,
		"provider", msg.Provider,
	)

	return &domain.IngestionResult{
		OK:          true,
		Action:      action,
		CandidateID: &candidateID,
		Reply:       reply,
	}, nil
}

// notify sends the acknowledgement best-effort: only when a recipient is
// known, and a delivery failure never changes the processing outcome.
func (u *ingestionUsecase) notify(ctx context.Context, to, body string) {
	if to == "" {
		return
	}
	if err := u.notifier.SendText(ctx, to, body); err != nil {
		logger.Log.Warn("acknowledgement delivery failed", "to", to, "error", err)
	}
}

// scratchPath picks a per-event destination under the upload dir. The uuid
// prefix keeps concurrent events from clobbering each other; the original
// extension is kept so text extraction can dispatch on it.
func (u *ingestionUsecase) scratchPath(filename string) string {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}
	return filepath.Join(u.uploadDir, uuid.NewString()+"-"+name)
}

var titleCaser = cases.Title(language.Und)

// DisplayName renders an extracted full name for the outbound reply:
// whitespace collapsed and title-cased. Storage keeps the name exactly as
// extracted; only the acknowledgement gets this treatment.
func DisplayName(fullName *string) string {
	if fullName == nil {
		return ""
	}
	collapsed := strings.Join(strings.Fields(*fullName), " ")
	if collapsed == "" {
		return ""
	}
	return titleCaser.String(collapsed)
}
