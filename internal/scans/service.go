package scans

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/diagnosis"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
)

// Verdict is the compatibility answer for one scanned product. Scans
// are ephemeral and never persisted, only the credit spend and the
// points award leave a trace.
type Verdict struct {
	Result    *assistant.ScanResult `json:"result"`
	Remaining int                   `json:"remaining"`
}

// Service analyzes product photos against the active diagnosis.
type Service interface {
	Scan(ctx context.Context, profileID uuid.UUID, imageBase64 string) (*Verdict, error)
}

type service struct {
	ledger    ledger.Service
	rewards   rewards.Service
	profiles  profiles.Service
	diagnosis diagnosis.Service
	assistant assistant.Service
}

// NewService wires the scan service.
func NewService(ledgerSvc ledger.Service, rewardsSvc rewards.Service, profilesSvc profiles.Service, diagnosisSvc diagnosis.Service, assistantSvc assistant.Service) (Service, error) {
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if rewardsSvc == nil {
		return nil, fmt.Errorf("rewards service is required")
	}
	if profilesSvc == nil {
		return nil, fmt.Errorf("profiles service is required")
	}
	if diagnosisSvc == nil {
		return nil, fmt.Errorf("diagnosis service is required")
	}
	if assistantSvc == nil {
		return nil, fmt.Errorf("assistant service is required")
	}
	return &service{
		ledger:    ledgerSvc,
		rewards:   rewardsSvc,
		profiles:  profilesSvc,
		diagnosis: diagnosisSvc,
		assistant: assistantSvc,
	}, nil
}

func (s *service) Scan(ctx context.Context, profileID uuid.UUID, imageBase64 string) (*Verdict, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if imageBase64 == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "a product photo is required")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	if profile.ScanCredits < 1 {
		return nil, apperrors.New(apperrors.CodeForbidden, "no scan credits available")
	}

	req := assistant.ScanRequest{
		UserID:         profile.ID.String(),
		ImageBase64:    imageBase64,
		MemoryKey:      profile.MemoryKey,
		ConversationID: profile.ConversationID,
	}
	if latest, err := s.diagnosis.Latest(ctx, profileID); err == nil && latest != nil {
		req.Diagnosis, _ = json.Marshal(latest)
		req.Protocol, _ = json.Marshal(latest.Protocol)
	}

	result := s.assistant.ScanProduct(ctx, req)

	remaining, err := s.ledger.Deduct(ctx, profile.ID, enums.CreditScan, 1)
	if err != nil {
		return nil, err
	}
	if _, err := s.rewards.AwardAction(ctx, profile.ID, rewards.ActionScan); err != nil {
		return nil, err
	}

	return &Verdict{Result: result, Remaining: remaining}, nil
}
