package marketing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	apperrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type fakeAssistant struct {
	campaignFn func(ctx context.Context, req assistant.MarketingRequest) bool
}

func (f *fakeAssistant) SubmitDiagnosis(ctx context.Context, req assistant.DiagnosisRequest) *assistant.DiagnosisResult {
	return nil
}

func (f *fakeAssistant) ScanProduct(ctx context.Context, req assistant.ScanRequest) *assistant.ScanResult {
	return nil
}

func (f *fakeAssistant) SendChat(ctx context.Context, req assistant.ChatRequest) *assistant.ChatReply {
	return nil
}

func (f *fakeAssistant) CreateCheckout(ctx context.Context, req assistant.CheckoutRequest) *assistant.CheckoutResponse {
	return nil
}

func (f *fakeAssistant) SendCampaign(ctx context.Context, req assistant.MarketingRequest) bool {
	if f.campaignFn != nil {
		return f.campaignFn(ctx, req)
	}
	return false
}

func newTestService(t *testing.T, gateway *fakeAssistant) Service {
	t.Helper()
	if gateway == nil {
		gateway = &fakeAssistant{}
	}
	svc, err := NewService(gateway, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestSendCampaignForwardsRequest(t *testing.T) {
	adminID := uuid.New()

	var sent assistant.MarketingRequest
	svc := newTestService(t, &fakeAssistant{
		campaignFn: func(ctx context.Context, req assistant.MarketingRequest) bool {
			sent = req
			return false
		},
	})

	result, err := svc.SendCampaign(context.Background(), adminID, CampaignInput{
		TargetSegment: enums.SegmentActive,
		Title:         "  Novidade  ",
		Message:       "Confira o novo protocolo.",
		Email:         true,
		Push:          true,
	})
	if err != nil {
		t.Fatalf("SendCampaign error: %v", err)
	}
	if result.Simulated {
		t.Fatal("expected real dispatch")
	}
	if sent.AdminID != adminID.String() || sent.TargetSegment != "active" {
		t.Fatalf("unexpected request: %+v", sent)
	}
	if sent.Title != "Novidade" {
		t.Fatalf("expected trimmed title, got %q", sent.Title)
	}
	if !sent.Channels.Email || !sent.Channels.Push {
		t.Fatalf("unexpected channels: %+v", sent.Channels)
	}
}

func TestSendCampaignReportsSimulation(t *testing.T) {
	svc := newTestService(t, &fakeAssistant{
		campaignFn: func(ctx context.Context, req assistant.MarketingRequest) bool { return true },
	})

	result, err := svc.SendCampaign(context.Background(), uuid.New(), CampaignInput{
		TargetSegment: enums.SegmentAll,
		Title:         "t",
		Message:       "m",
		Push:          true,
	})
	if err != nil {
		t.Fatalf("SendCampaign error: %v", err)
	}
	if !result.Simulated {
		t.Fatal("expected simulated dispatch")
	}
}

func TestSendCampaignValidation(t *testing.T) {
	svc := newTestService(t, nil)

	tests := []struct {
		name  string
		input CampaignInput
	}{
		{"unknown segment", CampaignInput{TargetSegment: "vip", Title: "t", Message: "m", Push: true}},
		{"missing title", CampaignInput{TargetSegment: enums.SegmentAll, Message: "m", Push: true}},
		{"missing message", CampaignInput{TargetSegment: enums.SegmentAll, Title: "t", Push: true}},
		{"no channels", CampaignInput{TargetSegment: enums.SegmentAll, Title: "t", Message: "m"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendCampaign(context.Background(), uuid.New(), tc.input)
			if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}
