package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/diagnosis"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
)

const defaultHistoryLimit = 50

// SendResult is the persisted outcome of one conversation turn.
type SendResult struct {
	Answer    string `json:"answer"`
	Cost      int    `json:"cost"`
	Remaining int    `json:"remaining"`
}

// Service runs the assistant conversation with token accounting.
type Service interface {
	Send(ctx context.Context, profileID uuid.UUID, message string) (*SendResult, error)
	History(ctx context.Context, profileID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Service
	rewards   rewards.Service
	profiles  profiles.Service
	diagnosis diagnosis.Service
	assistant assistant.Service
}

// NewService wires the chat service.
func NewService(repo Repository, ledgerSvc ledger.Service, rewardsSvc rewards.Service, profilesSvc profiles.Service, diagnosisSvc diagnosis.Service, assistantSvc assistant.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
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
		repo:      repo,
		ledger:    ledgerSvc,
		rewards:   rewardsSvc,
		profiles:  profilesSvc,
		diagnosis: diagnosisSvc,
		assistant: assistantSvc,
	}, nil
}

// Send runs one turn. The gate checks for at least one token up front;
// the actual charge is the reply cost and may clamp at zero when a long
// answer outruns the balance.
func (s *service) Send(ctx context.Context, profileID uuid.UUID, message string) (*SendResult, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "message is required")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "profile not found")
	}
	if profile.ChatCredits < 1 {
		return nil, apperrors.New(apperrors.CodeForbidden, "no chat tokens available")
	}

	req := assistant.ChatRequest{
		UserID:         profile.ID.String(),
		Message:        message,
		MemoryKey:      profile.MemoryKey,
		ConversationID: profile.ConversationID,
	}
	if latest, err := s.diagnosis.Latest(ctx, profileID); err == nil && latest != nil {
		req.Diagnosis, _ = json.Marshal(latest)
		req.Protocol, _ = json.Marshal(latest.Protocol)
	}

	reply := s.assistant.SendChat(ctx, req)

	if err := s.repo.Create(ctx, &models.ChatMessage{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Sender:    SenderUser,
		Text:      message,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &models.ChatMessage{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Sender:    SenderAssistant,
		Text:      reply.Answer,
	}); err != nil {
		return nil, err
	}

	if reply.ConversationID != "" {
		if err := s.profiles.SetConversationID(ctx, profile.ID, reply.ConversationID); err != nil {
			return nil, err
		}
	}

	cost := s.ledger.ChatCost(reply.Answer)
	remaining, err := s.ledger.Deduct(ctx, profile.ID, enums.CreditChat, cost)
	if err != nil {
		return nil, err
	}
	if _, err := s.rewards.AwardAction(ctx, profile.ID, rewards.ActionChat); err != nil {
		return nil, err
	}

	return &SendResult{
		Answer:    reply.Answer,
		Cost:      cost,
		Remaining: remaining,
	}, nil
}

func (s *service) History(ctx context.Context, profileID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if profileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByProfile(ctx, profileID, limit)
}
