// internal/engine/fallback/service.go
package fallback

import (
	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

// suggestionCorpus is shown when the engine could not answer, so users learn
// the shapes of questions the engine handles well.
var suggestionCorpus = []string{
	"Quantos transformadores temos?",
	"Qual o status do equipamento EQ-1023?",
	"Quando foi a ultima manutencao do transformador TR-204?",
	"Quais manutencoes estao previstas para os proximos 7 dias?",
	"How many corrective work orders were executed last month?",
	"List pumps at location SUB-NORTE-01.",
}

// triggerMessages maps each fallback trigger to a user-facing explanation.
// Every trigger has an entry; unknown triggers get the generic message.
var triggerMessages = map[models.FallbackTrigger]string{
	models.TriggerGenerationError:    "Não consegui montar uma consulta para essa pergunta. Tente reformular ou use um dos exemplos abaixo.",
	models.TriggerTimeout:            "A consulta demorou mais do que o esperado. Tente novamente em instantes ou simplifique a pergunta.",
	models.TriggerLowConfidence:      "Não tenho confiança suficiente na interpretação dessa pergunta. Reformule com mais detalhes, como o tipo ou o código do equipamento.",
	models.TriggerEmptyResponse:      "A consulta foi executada mas não encontrou registros. Verifique os filtros, como datas ou códigos de equipamento.",
	models.TriggerQuotaExhausted:     "O serviço de interpretação está temporariamente indisponível. Perguntas simples de contagem e status continuam funcionando.",
	models.TriggerValidationRejected: "Essa pergunta contém padrões que não posso processar por segurança. Reformule usando linguagem natural.",
	models.TriggerOutOfDomain:        "Só consigo responder perguntas sobre equipamentos e ordens de manutenção. Veja os exemplos abaixo.",
	models.TriggerAllPathsExhausted:  "Não consegui responder por nenhum dos caminhos disponíveis. Tente novamente ou use um dos exemplos abaixo.",
}

const genericMessage = "Não consegui entender a pergunta. Tente um dos exemplos abaixo."

// Service produces a usable response when every answer path failed. It is
// total: Respond always returns a response and never an error.
type Service struct {
	logger logger.Logger
}

func NewService(log logger.Logger) *Service {
	return &Service{
		logger: log.With(map[string]interface{}{"component": "fallback-service"}),
	}
}

// Respond builds the degraded answer for the given trigger. The intent, when
// known, selects intent-specific guidance over the generic suggestions.
func (s *Service) Respond(trigger models.FallbackTrigger, intent models.Intent) models.FallbackResponse {
	message, ok := triggerMessages[trigger]
	if !ok {
		message = genericMessage
	}

	resp := models.FallbackResponse{
		Text:          message,
		Suggestions:   suggestionsFor(intent),
		TriggerReason: trigger,
	}

	s.logger.Info("fallback response served", map[string]interface{}{
		"trigger": trigger,
		"intent":  intent,
	})

	return resp
}

// suggestionsFor narrows the corpus to the detected intent family so the
// hints stay close to what the user was trying to ask.
func suggestionsFor(intent models.Intent) []string {
	switch intent {
	case models.IntentCountEquipment, models.IntentCountMaintenance:
		return []string{
			"Quantos transformadores temos?",
			"How many corrective work orders were executed last month?",
			"Quantas manutenções preventivas foram executadas este ano?",
		}
	case models.IntentEquipmentStatus, models.IntentEquipmentSearch:
		return []string{
			"Qual o status do equipamento EQ-1023?",
			"List pumps at location SUB-NORTE-01.",
		}
	case models.IntentLastMaintenanceExecuted, models.IntentMaintenanceHistory:
		return []string{
			"Quando foi a ultima manutencao do transformador TR-204?",
			"Show the maintenance history of pump PMP-001.",
		}
	case models.IntentUpcomingMaintenance:
		return []string{
			"Quais manutencoes estao previstas para os proximos 7 dias?",
			"What maintenance is planned for next week?",
		}
	default:
		return suggestionCorpus
	}
}
