package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"

	"github.com/gloova-ai/gloova-backend/pkg/config"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

// URLSource resolves the gateway URL at call time so operators can repoint
// the workflow without a restart.
type URLSource interface {
	GatewayURL(ctx context.Context) string
}

// StaticURL is a URLSource pinned to one address.
type StaticURL string

func (s StaticURL) GatewayURL(context.Context) string { return string(s) }

// Service is the unified assistant workflow gateway. Every call is a POST
// to one URL with an action discriminator; any transport failure, non-2xx
// status or timeout degrades to a clearly labeled mock payload instead of
// surfacing an error to the user flow.
type Service interface {
	SubmitDiagnosis(ctx context.Context, req DiagnosisRequest) *DiagnosisResult
	ScanProduct(ctx context.Context, req ScanRequest) *ScanResult
	SendChat(ctx context.Context, req ChatRequest) *ChatReply
	CreateCheckout(ctx context.Context, req CheckoutRequest) *CheckoutResponse
	SendCampaign(ctx context.Context, req MarketingRequest) (simulated bool)
}

type client struct {
	http *http.Client
	urls URLSource
	logg *logger.Logger
}

// NewClient builds the gateway client. urls may be nil, in which case the
// boot URL from configuration is used for every call.
func NewClient(cfg config.GatewayConfig, urls URLSource, logg *logger.Logger) (Service, error) {
	if urls == nil {
		urls = StaticURL(cfg.URL)
	}
	return &client{
		http: &http.Client{Timeout: cfg.Timeout},
		urls: urls,
		logg: logg,
	}, nil
}

func (c *client) SubmitDiagnosis(ctx context.Context, req DiagnosisRequest) *DiagnosisResult {
	body, err := c.post(ctx, enums.ActionDiagnosis, req)
	if err != nil {
		c.warn(ctx, enums.ActionDiagnosis, err)
		return mockDiagnosisResult()
	}

	var result DiagnosisResult
	if err := json.Unmarshal(body, &result); err != nil || len(result.Protocol) == 0 {
		c.warn(ctx, enums.ActionDiagnosis, fmt.Errorf("undecodable diagnosis payload"))
		return mockDiagnosisResult()
	}
	return &result
}

func (c *client) ScanProduct(ctx context.Context, req ScanRequest) *ScanResult {
	body, err := c.post(ctx, enums.ActionScan, req)
	if err != nil {
		c.warn(ctx, enums.ActionScan, err)
		return mockScanResult(rand.Float64() > 0.3)
	}

	var result ScanResult
	if err := json.Unmarshal(body, &result); err != nil || result.ProductName == "" {
		c.warn(ctx, enums.ActionScan, fmt.Errorf("undecodable scan payload"))
		return mockScanResult(rand.Float64() > 0.3)
	}
	return &result
}

// SendChat posts the message and decodes the answer tolerantly: the
// workflow has shipped the reply under several different keys over time,
// so the decoder probes resposta, text, output and message before falling
// back to the raw body.
func (c *client) SendChat(ctx context.Context, req ChatRequest) *ChatReply {
	body, err := c.post(ctx, enums.ActionChat, req)
	if err != nil {
		c.warn(ctx, enums.ActionChat, err)
		return mockChatReply(req.Message)
	}
	return decodeChatReply(body)
}

func decodeChatReply(body []byte) *ChatReply {
	var probe map[string]any
	if err := json.Unmarshal(body, &probe); err == nil {
		reply := &ChatReply{}
		for _, key := range []string{"resposta", "text", "output", "message"} {
			if value, ok := probe[key].(string); ok && value != "" {
				reply.Answer = value
				break
			}
		}
		if id, ok := probe["conversation_id"].(string); ok {
			reply.ConversationID = id
		}
		if reply.Answer != "" {
			return reply
		}
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		raw = "..."
	}
	return &ChatReply{Answer: raw}
}

func (c *client) CreateCheckout(ctx context.Context, req CheckoutRequest) *CheckoutResponse {
	method := enums.PaymentMethod(req.Method)

	body, err := c.post(ctx, enums.ActionCheckout, req)
	if err != nil {
		c.warn(ctx, enums.ActionCheckout, err)
		return mockCheckoutResponse(method)
	}

	var result CheckoutResponse
	if err := json.Unmarshal(body, &result); err != nil || result.PaymentID == "" {
		c.warn(ctx, enums.ActionCheckout, fmt.Errorf("undecodable checkout payload"))
		return mockCheckoutResponse(method)
	}
	return &result
}

func (c *client) SendCampaign(ctx context.Context, req MarketingRequest) bool {
	if _, err := c.post(ctx, enums.ActionMarketing, req); err != nil {
		c.warn(ctx, enums.ActionMarketing, err)
		// Campaign dispatch degrades to simulated success.
		return true
	}
	return false
}

// post serializes the payload, injects the action discriminator, and
// returns the response body for any 2xx status.
func (c *client) post(ctx context.Context, action enums.GatewayAction, payload any) ([]byte, error) {
	url := strings.TrimSpace(c.urls.GatewayURL(ctx))
	if url == "" {
		return nil, fmt.Errorf("gateway url is not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", action, err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", action, err)
	}
	envelope["action"] = action.String()

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway %s call: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway %s call: status %d", action, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *client) warn(ctx context.Context, action enums.GatewayAction, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithAction(ctx, action.String())
	c.logg.Warn(ctx, fmt.Sprintf("gateway unavailable, serving mock payload: %v", err))
}
