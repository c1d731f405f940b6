// internal/engine/narrate.go
package engine

import (
	"fmt"
	"strings"

	"maintquery/internal/models"
)

// narrate renders an executed result set into the answer text for its intent.
// Replies follow the dataset's language; the SQL and rows travel alongside
// for callers that render their own views.
func narrate(intent models.Intent, rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "Não encontrei registros para essa consulta. Verifique os filtros, como datas ou códigos de equipamento."
	}

	switch intent {
	case models.IntentCountEquipment:
		return fmt.Sprintf("Encontrei %s equipamento(s) com os filtros informados.", totalOf(rows))
	case models.IntentCountMaintenance:
		return fmt.Sprintf("Encontrei %s ordem(ns) de manutenção com os filtros informados.", totalOf(rows))
	case models.IntentEquipmentStatus:
		return narrateStatus(rows)
	case models.IntentLastMaintenanceExecuted:
		return narrateLastExecuted(rows[0])
	case models.IntentUpcomingMaintenance:
		return fmt.Sprintf("Há %d manutenção(ões) planejada(s). A mais próxima: %s.", len(rows), describeOrder(rows[0]))
	case models.IntentMaintenanceHistory:
		return fmt.Sprintf("Histórico com %d registro(s). Mais recente: %s.", len(rows), describeOrder(rows[0]))
	case models.IntentFailureAnalysis:
		return fmt.Sprintf("Análise de falhas: %d grupo(s) de equipamentos com manutenções corretivas no período.", len(rows))
	case models.IntentEquipmentSearch, models.IntentLocationSearch:
		return fmt.Sprintf("Encontrei %d equipamento(s) correspondente(s).", len(rows))
	default:
		return fmt.Sprintf("Encontrei %d registro(s) para a sua pergunta.", len(rows))
	}
}

// totalOf pulls the aggregate count column out of a single-row COUNT result.
func totalOf(rows []map[string]interface{}) string {
	if v, ok := rows[0]["total"]; ok {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%d", len(rows))
}

func narrateStatus(rows []map[string]interface{}) string {
	row := rows[0]
	name := firstOf(row, "name", "equipment_id", "id")
	status := firstOf(row, "status")
	if name != "" && status != "" {
		return fmt.Sprintf("O equipamento %s está com status %s.", name, status)
	}
	return fmt.Sprintf("Encontrei %d equipamento(s); o primeiro registro está detalhado nos dados retornados.", len(rows))
}

func narrateLastExecuted(row map[string]interface{}) string {
	name := firstOf(row, "name", "equipment_id")
	executed := firstOf(row, "executed_at")
	mtype := firstOf(row, "maintenance_type")

	var b strings.Builder
	b.WriteString("A última manutenção")
	if mtype != "" {
		fmt.Fprintf(&b, " (%s)", mtype)
	}
	if name != "" {
		fmt.Fprintf(&b, " de %s", name)
	}
	if executed != "" {
		fmt.Fprintf(&b, " foi executada em %s", executed)
	} else {
		b.WriteString(" consta como executada, mas sem data registrada")
	}
	b.WriteString(".")
	return b.String()
}

// describeOrder summarizes one maintenance order row from whatever columns
// the plan projected.
func describeOrder(row map[string]interface{}) string {
	parts := make([]string, 0, 3)
	if v := firstOf(row, "name", "equipment_id"); v != "" {
		parts = append(parts, v)
	}
	if v := firstOf(row, "maintenance_type"); v != "" {
		parts = append(parts, v)
	}
	if v := firstOf(row, "planned_for", "executed_at"); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "registro sem colunas descritivas"
	}
	return strings.Join(parts, ", ")
}

func firstOf(row map[string]interface{}, columns ...string) string {
	for _, col := range columns {
		if v, ok := row[col]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
