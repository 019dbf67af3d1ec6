package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
)

const protocolDays = 30

// SubmitInput carries the photos and questionnaire for one analysis.
type SubmitInput struct {
	ImageBase64      string
	AdditionalImages map[string]string
	Quiz             *assistant.QuizData
}

// ProtocolView is the access-gated protocol response.
type ProtocolView struct {
	Access    plans.ProtocolAccess `json:"access"`
	Diagnosis *models.Diagnosis    `json:"diagnosis,omitempty"`
}

// Service runs the diagnosis flow: credit gate, workflow call, persistence,
// points award.
type Service interface {
	Submit(ctx context.Context, profileID uuid.UUID, input SubmitInput) (*models.Diagnosis, error)
	Latest(ctx context.Context, profileID uuid.UUID) (*models.Diagnosis, error)
	History(ctx context.Context, profileID uuid.UUID) ([]models.Diagnosis, error)
	Protocol(ctx context.Context, profileID uuid.UUID) (*ProtocolView, error)
	CompleteDay(ctx context.Context, profileID uuid.UUID, day int) (*models.Diagnosis, error)
	CalendarICS(ctx context.Context, profileID uuid.UUID) ([]byte, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Service
	rewards   rewards.Service
	plans     plans.Service
	profiles  profiles.Service
	assistant assistant.Service
}

// NewService wires the diagnosis service with its collaborators.
func NewService(repo Repository, ledgerSvc ledger.Service, rewardsSvc rewards.Service, plansSvc plans.Service, profilesSvc profiles.Service, assistantSvc assistant.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("diagnosis repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if rewardsSvc == nil {
		return nil, fmt.Errorf("rewards service required")
	}
	if plansSvc == nil {
		return nil, fmt.Errorf("plans service required")
	}
	if profilesSvc == nil {
		return nil, fmt.Errorf("profiles service required")
	}
	if assistantSvc == nil {
		return nil, fmt.Errorf("assistant service required")
	}
	return &service{
		repo:      repo,
		ledger:    ledgerSvc,
		rewards:   rewardsSvc,
		plans:     plansSvc,
		profiles:  profilesSvc,
		assistant: assistantSvc,
	}, nil
}

// Submit runs one full diagnosis. The credit gate comes first; the
// deduction lands after the workflow answers so a gateway hiccup (which
// degrades to a mock) still consumes exactly one credit.
func (s *service) Submit(ctx context.Context, profileID uuid.UUID, input SubmitInput) (*models.Diagnosis, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if input.ImageBase64 == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "a photo is required")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	if profile.DiagnosisCredits < 1 {
		return nil, apperrors.New(apperrors.CodeForbidden, "no diagnosis credits available")
	}

	history, _ := json.Marshal(map[string]any{
		"subscription_tier": profile.SubscriptionTier,
		"points":            profile.Points,
	})

	result := s.assistant.SubmitDiagnosis(ctx, assistant.DiagnosisRequest{
		UserID:           profile.ID.String(),
		ImageBase64:      input.ImageBase64,
		AdditionalImages: input.AdditionalImages,
		UserHistory:      history,
		MemoryKey:        profile.MemoryKey,
		QuizData:         input.Quiz,
		ConversationID:   profile.ConversationID,
	})

	diagnosis := &models.Diagnosis{
		ID:            uuid.New(),
		ProfileID:     profile.ID,
		AnalysisText:  result.AnalysisText,
		Curvature:     result.Curvature,
		Porosity:      result.Porosity,
		Oiliness:      result.Oiliness,
		Frizz:         result.Frizz,
		DamageLevel:   result.DamageLevel,
		OverallHealth: result.OverallHealth,
		Protocol:      result.Protocol,
	}
	if err := s.repo.Create(ctx, diagnosis); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Deduct(ctx, profile.ID, enums.CreditDiagnosis, 1); err != nil {
		return nil, err
	}
	if _, err := s.rewards.AwardAction(ctx, profile.ID, rewards.ActionDiagnosis); err != nil {
		return nil, err
	}

	return diagnosis, nil
}

func (s *service) Latest(ctx context.Context, profileID uuid.UUID) (*models.Diagnosis, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	return s.repo.GetLatest(ctx, profileID)
}

func (s *service) History(ctx context.Context, profileID uuid.UUID) ([]models.Diagnosis, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	return s.repo.ListByProfile(ctx, profileID)
}

// Protocol composes the latest diagnosis with the plan gate. The gate
// priority is fixed: no diagnosis beats the paywall.
func (s *service) Protocol(ctx context.Context, profileID uuid.UUID) (*ProtocolView, error) {
	diagnosis, err := s.Latest(ctx, profileID)
	if err != nil {
		return nil, err
	}

	access, err := s.plans.ProtocolAccess(ctx, profileID, diagnosis != nil)
	if err != nil {
		return nil, err
	}

	view := &ProtocolView{Access: access}
	if access == plans.ProtocolAccessFull {
		view.Diagnosis = diagnosis
	}
	return view, nil
}

// CompleteDay marks a protocol day done. Completion only moves forward:
// a day once completed stays completed.
func (s *service) CompleteDay(ctx context.Context, profileID uuid.UUID, day int) (*models.Diagnosis, error) {
	if day < 1 || day > protocolDays {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("day must be between 1 and %d", protocolDays))
	}

	diagnosis, err := s.Latest(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if diagnosis == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active diagnosis")
	}

	updated := false
	for i := range diagnosis.Protocol {
		if diagnosis.Protocol[i].Day == day && !diagnosis.Protocol[i].Completed {
			diagnosis.Protocol[i].Completed = true
			updated = true
		}
	}
	if !updated {
		return diagnosis, nil
	}

	if err := s.repo.UpdateProtocol(ctx, diagnosis.ID, diagnosis.Protocol); err != nil {
		return nil, err
	}
	return diagnosis, nil
}

// CalendarICS exports the protocol as an iCalendar document and awards
// the calendar sync points.
func (s *service) CalendarICS(ctx context.Context, profileID uuid.UUID) ([]byte, error) {
	diagnosis, err := s.Latest(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if diagnosis == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active diagnosis")
	}

	payload := ProtocolICS(diagnosis.Protocol, diagnosis.CreatedAt)
	if _, err := s.rewards.AwardAction(ctx, profileID, rewards.ActionCalendarSync); err != nil {
		return nil, err
	}
	return payload, nil
}
