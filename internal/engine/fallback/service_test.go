// internal/engine/fallback/service_test.go
package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

func TestRespond_CoversEveryTrigger(t *testing.T) {
	s := NewService(logger.NewTestLogger(t))

	triggers := []models.FallbackTrigger{
		models.TriggerGenerationError,
		models.TriggerTimeout,
		models.TriggerLowConfidence,
		models.TriggerEmptyResponse,
		models.TriggerQuotaExhausted,
		models.TriggerValidationRejected,
		models.TriggerOutOfDomain,
		models.TriggerAllPathsExhausted,
	}

	for _, trigger := range triggers {
		t.Run(string(trigger), func(t *testing.T) {
			resp := s.Respond(trigger, models.IntentGeneralQuery)
			assert.NotEmpty(t, resp.Text)
			assert.NotEmpty(t, resp.Suggestions)
			assert.Equal(t, trigger, resp.TriggerReason)
		})
	}
}

func TestRespond_UnknownTriggerGetsGenericMessage(t *testing.T) {
	s := NewService(logger.NewTestLogger(t))

	resp := s.Respond(models.FallbackTrigger("something_new"), models.IntentGeneralQuery)
	assert.Equal(t, genericMessage, resp.Text)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestRespond_SuggestionsFollowIntentFamily(t *testing.T) {
	s := NewService(logger.NewTestLogger(t))

	count := s.Respond(models.TriggerLowConfidence, models.IntentCountEquipment)
	assert.Contains(t, count.Suggestions, "Quantos transformadores temos?")

	status := s.Respond(models.TriggerLowConfidence, models.IntentEquipmentStatus)
	assert.Contains(t, status.Suggestions, "Qual o status do equipamento EQ-1023?")

	upcoming := s.Respond(models.TriggerLowConfidence, models.IntentUpcomingMaintenance)
	assert.Contains(t, upcoming.Suggestions, "What maintenance is planned for next week?")

	general := s.Respond(models.TriggerLowConfidence, models.IntentGeneralQuery)
	assert.Equal(t, suggestionCorpus, general.Suggestions)
}
