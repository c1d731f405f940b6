// internal/engine/genai/prompt.go
package genai

import (
	"fmt"
	"strings"
)

// schemaDescription grounds the model in the two tables the engine may read.
// Kept deliberately small: the prompt is re-sent on every generative call.
const schemaDescription = `Tables:
equipment(equipment_id TEXT PK, name TEXT, equipment_type TEXT, status TEXT, location_code TEXT, updated_at TIMESTAMP)
maintenance_orders(order_id TEXT PK, equipment_id TEXT FK, maintenance_type TEXT, planned_for DATE, executed_at TIMESTAMP NULL, notes TEXT)

equipment_type values: Transformer, Pump, Motor, Generator, Compressor, CircuitBreaker, Valve, Panel
maintenance_type values: Preventive, Corrective, Predictive, Inspection, Calibration, Lubrication
status values: Operational, Failed, UnderMaintenance, Stopped, Pending, Decommissioned
executed_at is NULL until the work order is completed.`

const systemInstructions = `You translate maintenance questions into a single PostgreSQL SELECT statement.
Rules:
- Output exactly one SELECT statement and nothing else.
- Never write INSERT, UPDATE, DELETE, DROP, ALTER, CREATE or multiple statements.
- Use only the tables and columns in the schema.
- Questions may be in Portuguese or English.`

// fewShotExamples are worked translations sent with every request.
var fewShotExamples = []struct {
	Question string
	SQL      string
}{
	{
		Question: "Quantas bombas estão operacionais?",
		SQL:      "SELECT COUNT(*) AS total FROM equipment WHERE equipment_type = 'Pump' AND status = 'Operational'",
	},
	{
		Question: "When was the last corrective maintenance on EQ-1042?",
		SQL: "SELECT equipment_id, maintenance_type, executed_at FROM maintenance_orders" +
			" WHERE equipment_id = 'EQ-1042' AND maintenance_type = 'Corrective' AND executed_at IS NOT NULL" +
			" ORDER BY executed_at DESC LIMIT 1",
	},
	{
		Question: "Qual o tipo de equipamento com mais falhas este ano?",
		SQL: "SELECT e.equipment_type, COUNT(*) AS failure_count FROM maintenance_orders m" +
			" JOIN equipment e ON e.equipment_id = m.equipment_id" +
			" WHERE m.maintenance_type = 'Corrective' AND m.executed_at >= date_trunc('year', CURRENT_DATE)" +
			" GROUP BY e.equipment_type ORDER BY failure_count DESC LIMIT 1",
	},
}

// buildPrompt assembles the structured prompt for one question.
func buildPrompt(question string) string {
	var parts []string

	parts = append(parts, systemInstructions)
	parts = append(parts, "\nSchema:")
	parts = append(parts, schemaDescription)

	parts = append(parts, "\nExamples:")
	for _, ex := range fewShotExamples {
		parts = append(parts, fmt.Sprintf("Q: %s\nSQL: %s", ex.Question, ex.SQL))
	}

	parts = append(parts, fmt.Sprintf("\nQ: %s\nSQL:", question))

	return strings.Join(parts, "\n")
}
