package marketing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

// CampaignInput is one admin-triggered dispatch.
type CampaignInput struct {
	TargetSegment enums.TargetSegment `json:"target_segment"`
	Title         string              `json:"title"`
	Message       string              `json:"message"`
	Email         bool                `json:"email"`
	Push          bool                `json:"push"`
}

// CampaignResult reports whether the gateway accepted the campaign or
// the send was only simulated because the gateway is unreachable.
type CampaignResult struct {
	Simulated bool `json:"simulated"`
}

// Service dispatches marketing campaigns through the workflow gateway.
type Service interface {
	SendCampaign(ctx context.Context, adminID uuid.UUID, input CampaignInput) (*CampaignResult, error)
}

type service struct {
	assistant assistant.Service
	logg      *logger.Logger
}

// NewService wires the marketing service.
func NewService(assistantSvc assistant.Service, logg *logger.Logger) (Service, error) {
	if assistantSvc == nil {
		return nil, fmt.Errorf("assistant service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{assistant: assistantSvc, logg: logg}, nil
}

func (s *service) SendCampaign(ctx context.Context, adminID uuid.UUID, input CampaignInput) (*CampaignResult, error) {
	if adminID == uuid.Nil {
		return nil, fmt.Errorf("admin id is required")
	}
	if !input.TargetSegment.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown target segment")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "title and message are required")
	}
	if !input.Email && !input.Push {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one channel is required")
	}

	simulated := s.assistant.SendCampaign(ctx, assistant.MarketingRequest{
		AdminID:       adminID.String(),
		TargetSegment: string(input.TargetSegment),
		Title:         strings.TrimSpace(input.Title),
		Message:       strings.TrimSpace(input.Message),
		Channels: assistant.MarketingChannels{
			Email: input.Email,
			Push:  input.Push,
		},
	})

	logCtx := s.logg.WithFields(s.logg.WithAction(ctx, "marketing_campaign"), map[string]any{
		"admin_id":  adminID.String(),
		"segment":   string(input.TargetSegment),
		"simulated": simulated,
	})
	s.logg.Info(logCtx, "campaign dispatched")

	return &CampaignResult{Simulated: simulated}, nil
}
