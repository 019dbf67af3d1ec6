package assistant

import (
	"encoding/json"

	dbtypes "github.com/gloova-ai/gloova-backend/pkg/db/types"
)

// QuizData carries the self-reported questionnaire alongside the photos.
type QuizData struct {
	HairGoal      string   `json:"hair_goal,omitempty"`
	WashFrequency string   `json:"wash_frequency,omitempty"`
	ChemicalUse   []string `json:"chemical_use,omitempty"`
	HeatUse       string   `json:"heat_use,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// DiagnosisRequest is the diagnosis action payload. Photos travel as
// base64; they are never stored on this side.
type DiagnosisRequest struct {
	UserID           string            `json:"user_id"`
	ImageBase64      string            `json:"image_base64"`
	AdditionalImages map[string]string `json:"additional_images,omitempty"`
	UserHistory      json.RawMessage   `json:"historico_usuario,omitempty"`
	MemoryKey        string            `json:"memory_key"`
	QuizData         *QuizData         `json:"quiz_data,omitempty"`
	ConversationID   *string           `json:"conversation_id"`
}

// DiagnosisResult is the structured hair analysis the workflow returns.
type DiagnosisResult struct {
	Date          string               `json:"date"`
	AnalysisText  string               `json:"analysis_text"`
	Curvature     string               `json:"curvature"`
	Porosity      string               `json:"porosity"`
	Oiliness      string               `json:"oiliness"`
	Frizz         string               `json:"frizz"`
	DamageLevel   string               `json:"damage_level"`
	OverallHealth string               `json:"overall_health"`
	Protocol      dbtypes.ProtocolDays `json:"protocol_30_days"`
}

// ScanRequest is the product scan action payload.
type ScanRequest struct {
	UserID         string          `json:"user_id"`
	ImageBase64    string          `json:"image_base64"`
	Diagnosis      json.RawMessage `json:"diagnostico_atual,omitempty"`
	Protocol       json.RawMessage `json:"protocolo_30_dias,omitempty"`
	MemoryKey      string          `json:"memory_key"`
	ConversationID *string         `json:"conversation_id"`
}

// ScanResult is the product compatibility verdict. It is ephemeral: the
// caller shows it once and nothing is persisted.
type ScanResult struct {
	ProductName         string `json:"product_name"`
	Category            string `json:"category"`
	CompositionSummary  string `json:"composition_summary"`
	Functions           string `json:"functions"`
	IsCompatible        bool   `json:"is_compatible"`
	Reason              string `json:"reason"`
	UsageRecommendation string `json:"usage_recommendation"`
	RecommendedDay      int    `json:"recommended_day,omitempty"`
}

// ChatRequest is the chat action payload.
type ChatRequest struct {
	UserID         string          `json:"user_id"`
	Message        string          `json:"mensagem"`
	Diagnosis      json.RawMessage `json:"diagnostico_atual,omitempty"`
	Protocol       json.RawMessage `json:"protocolo_30_dias,omitempty"`
	MemoryKey      string          `json:"memory_key"`
	ConversationID *string         `json:"conversation_id"`
}

// ChatReply is the decoded assistant answer.
type ChatReply struct {
	Answer         string `json:"resposta"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// CheckoutRequest is the checkout action payload.
type CheckoutRequest struct {
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	ItemType    string  `json:"type"`
	Method      string  `json:"method"`
}

// CheckoutResponse carries either a pix code or a hosted checkout URL.
type CheckoutResponse struct {
	PaymentID    string `json:"paymentId"`
	PixCode      string `json:"pixCode,omitempty"`
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
	QRCodeBase64 string `json:"qrCodeBase64,omitempty"`
}

// MarketingRequest is the campaign dispatch payload.
type MarketingRequest struct {
	AdminID       string            `json:"admin_id"`
	TargetSegment string            `json:"target_segment"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Channels      MarketingChannels `json:"channels"`
}

// MarketingChannels selects the delivery media.
type MarketingChannels struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}
