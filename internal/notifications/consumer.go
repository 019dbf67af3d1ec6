package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/events"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
	"github.com/gloova-ai/gloova-backend/pkg/pubsub/idempotency"
)

const entitlementNotificationConsumer = "entitlement-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches the entitlement event stream and turns balance
// changes into in-app notifications.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an entitlement notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("entitlement subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes[events.AttrEventType]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	if envelope.EventID == "" {
		c.logg.Warn(logCtx, "envelope missing event id")
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, entitlementNotificationConsumer, envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEnvelope(ctx, envelope); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, entitlementNotificationConsumer, envelope.EventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEnvelope(ctx context.Context, envelope events.Envelope) error {
	switch envelope.Type {
	case enums.EventPointsChanged:
		var payload events.PointsChanged
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse points payload: %w", err)
		}
		return c.handlePointsChanged(ctx, payload)
	case enums.EventCreditsChanged:
		var payload events.CreditsChanged
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse credits payload: %w", err)
		}
		return c.handleCreditsChanged(ctx, payload)
	case enums.EventTierChanged:
		var payload events.TierChanged
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse tier payload: %w", err)
		}
		return c.handleTierChanged(ctx, payload)
	default:
		return nil
	}
}

// handlePointsChanged notifies earned points. Spends are visible in the
// redemption flow itself, so only positive deltas produce a toast.
func (c *Consumer) handlePointsChanged(ctx context.Context, payload events.PointsChanged) error {
	if payload.Added <= 0 {
		return nil
	}
	return c.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		ProfileID: payload.ProfileID,
		Type:      enums.NotificationPoints,
		Title:     "Você ganhou pontos!",
		Message:   fmt.Sprintf("+%d pontos. Total: %d.", payload.Added, payload.Points),
	})
}

func (c *Consumer) handleCreditsChanged(ctx context.Context, payload events.CreditsChanged) error {
	if payload.Delta <= 0 {
		return nil
	}
	return c.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		ProfileID: payload.ProfileID,
		Type:      enums.NotificationCredits,
		Title:     "Créditos adicionados",
		Message:   fmt.Sprintf("+%d créditos de %s. Saldo: %d.", payload.Delta, creditLabel(payload.Type), payload.Balance),
	})
}

func (c *Consumer) handleTierChanged(ctx context.Context, payload events.TierChanged) error {
	return c.repo.Create(ctx, &models.Notification{
		ID:        uuid.New(),
		ProfileID: payload.ProfileID,
		Type:      enums.NotificationCredits,
		Title:     "Plano atualizado",
		Message:   fmt.Sprintf("Seu plano agora é %s.", payload.Tier),
	})
}

func creditLabel(creditType enums.CreditType) string {
	switch creditType {
	case enums.CreditChat:
		return "chat"
	case enums.CreditDiagnosis:
		return "diagnóstico"
	case enums.CreditScan:
		return "scan"
	default:
		return string(creditType)
	}
}
