package assistant

import (
	"fmt"
	"time"

	dbtypes "github.com/gloova-ai/gloova-backend/pkg/db/types"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
)

// Mock payloads returned when the workflow gateway is unreachable. They
// are deliberately labeled so nobody mistakes them for real analyses.

func mockDiagnosisResult() *DiagnosisResult {
	protocol := make(dbtypes.ProtocolDays, 30)
	for i := range protocol {
		protocol[i] = dbtypes.ProtocolDay{
			Day:         i + 1,
			Type:        mockProtocolDayType(i),
			Instruction: "Protocolo Exemplo: Aplicar máscara de tratamento.",
			Completed:   false,
		}
	}

	return &DiagnosisResult{
		Date:          time.Now().UTC().Format(time.RFC3339),
		AnalysisText:  "Modo Demo: O serviço de análise parece indisponível ou retornou erro. Verifique se o workflow está ativo.",
		Curvature:     "2C",
		Porosity:      "Média",
		Oiliness:      "Mista",
		Frizz:         "Moderado",
		DamageLevel:   "Baixo",
		OverallHealth: "Boa",
		Protocol:      protocol,
	}
}

func mockProtocolDayType(i int) enums.ProtocolDayType {
	switch i % 4 {
	case 0:
		return enums.ProtocolDayHydration
	case 1:
		return enums.ProtocolDayNutrition
	case 2:
		return enums.ProtocolDayPause
	default:
		return enums.ProtocolDayReconstruction
	}
}

func mockScanResult(compatible bool) *ScanResult {
	return &ScanResult{
		ProductName:         "Produto Demo",
		Category:            "Máscara",
		CompositionSummary:  "Ingredientes Exemplo",
		Functions:           "Nutrição",
		IsCompatible:        compatible,
		Reason:              "Resultado simulado (gateway offline).",
		UsageRecommendation: "Usar conforme rótulo.",
	}
}

func mockChatReply(message string) *ChatReply {
	return &ChatReply{
		Answer: fmt.Sprintf("[Demo] Gateway offline. Você disse: %q.", message),
	}
}

func mockCheckoutResponse(method enums.PaymentMethod) *CheckoutResponse {
	if method == enums.PaymentPix {
		return &CheckoutResponse{
			PaymentID: "pix_123",
			PixCode:   "00020126580014BR.GOV.BCB.PIX0136123e4567-e89b-12d3-a456-426614174000520400005303986540410.005802BR5913Gloova.AI6008Brasilia62070503***6304ABCD",
		}
	}
	return &CheckoutResponse{
		PaymentID:   "card_123",
		CheckoutURL: "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=SIMULACAO",
	}
}
