// internal/engine/sqlgen/rules.go
package sqlgen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	stderrors "maintquery/internal/common/errors"
	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

// RuleBuilder renders parameterized SQL from a fixed per-intent template
// library. Entities populate bound parameters only; nothing user-controlled
// is ever concatenated into the statement text.
type RuleBuilder struct {
	logger logger.Logger
}

func NewRuleBuilder(log logger.Logger) *RuleBuilder {
	return &RuleBuilder{
		logger: log.With(map[string]interface{}{"component": "rule-sql-builder"}),
	}
}

func (b *RuleBuilder) Kind() models.GeneratorKind {
	return models.GeneratorRules
}

// Generate selects the template family for the request's intent and binds
// the entities into it. Returns PlanUnavailable when the intent has no
// template or its required entities are missing, signaling the router to try
// the generative path.
func (b *RuleBuilder) Generate(_ context.Context, req *Request) (*models.QueryPlan, error) {
	build, ok := templates[req.Intent]
	if !ok {
		return nil, stderrors.NewPlanUnavailableError(string(req.Intent), "no template family for intent")
	}

	plan, err := build(req)
	if err != nil {
		return nil, err
	}

	plan.Generator = models.GeneratorRules
	plan.Intent = req.Intent
	plan.Entities = req.Entities

	b.logger.Debug("rule plan built", map[string]interface{}{
		"intent":     req.Intent,
		"paramCount": len(plan.Parameters),
	})

	return plan, nil
}

type templateFunc func(req *Request) (*models.QueryPlan, error)

// templates is the fixed per-intent library. GeneralQuery deliberately has
// no entry: a question without recognizable structure goes to the generative
// path or the fallback, never to a guessed template.
var templates = map[models.Intent]templateFunc{
	models.IntentCountEquipment:          buildCountEquipment,
	models.IntentCountMaintenance:        buildCountMaintenance,
	models.IntentEquipmentStatus:         buildEquipmentStatus,
	models.IntentLastMaintenanceExecuted: buildLastExecuted,
	models.IntentUpcomingMaintenance:     buildUpcoming,
	models.IntentMaintenanceHistory:      buildHistory,
	models.IntentFailureAnalysis:         buildFailureAnalysis,
	models.IntentEquipmentSearch:         buildEquipmentSearch,
	models.IntentLocationSearch:          buildLocationSearch,
}

// clause accumulates WHERE conditions and their bound arguments, numbering
// placeholders sequentially.
type clause struct {
	conds []string
	args  []interface{}
}

// in appends an explicit expanded IN ($i,...,$j) membership test. The
// placeholder list is spelled out element by element on purpose: array
// membership built-ins silently compiled to a reference to the bind token
// itself under some binding implementations, so the expansion is done here
// where it can be asserted in tests.
func (c *clause) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	if len(values) == 1 {
		c.conds = append(c.conds, column+" = $"+strconv.Itoa(len(c.args)+1))
		c.args = append(c.args, values[0])
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "$" + strconv.Itoa(len(c.args)+1)
		c.args = append(c.args, v)
	}
	c.conds = append(c.conds, column+" IN ("+strings.Join(placeholders, ", ")+")")
}

// between appends a closed date-interval condition on a date column.
func (c *clause) between(column, from, to string) {
	c.conds = append(c.conds, fmt.Sprintf("%s::date BETWEEN $%d AND $%d", column, len(c.args)+1, len(c.args)+2))
	c.args = append(c.args, from, to)
}

func (c *clause) where() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

func (c *clause) and() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(c.conds, " AND ")
}

// entityValues collects the normalized values of one entity type, in order.
// Extraction already de-duplicated, so the slice is duplicate-free.
func entityValues(entities []models.Entity, t models.EntityType) []string {
	var out []string
	for _, e := range entities {
		if e.Type == t {
			out = append(out, e.Normalized)
		}
	}
	return out
}

// firstDateRange returns the first extracted date range, if any.
func firstDateRange(entities []models.Entity) (from, to string, ok bool) {
	for _, e := range entities {
		if e.Type == models.EntityDateRange {
			parts := strings.SplitN(e.Normalized, "/", 2)
			if len(parts) == 2 {
				return parts[0], parts[1], true
			}
		}
	}
	return "", "", false
}

func buildCountEquipment(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("status", entityValues(req.Entities, models.EntityStatus))
	c.in("location_code", entityValues(req.Entities, models.EntityLocationCode))

	return &models.QueryPlan{
		SQLTemplate: "SELECT COUNT(*) AS total FROM equipment" + c.where(),
		Parameters:  c.args,
		Confidence:  0.9,
	}, nil
}

func buildCountMaintenance(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("maintenance_type", entityValues(req.Entities, models.EntityMaintenanceType))
	c.in("equipment_id", entityValues(req.Entities, models.EntityEquipmentID))
	if from, to, ok := firstDateRange(req.Entities); ok {
		c.between("executed_at", from, to)
	}

	return &models.QueryPlan{
		SQLTemplate: "SELECT COUNT(*) AS total FROM maintenance_orders" + c.where(),
		Parameters:  c.args,
		Confidence:  0.85,
	}, nil
}

func buildEquipmentStatus(req *Request) (*models.QueryPlan, error) {
	ids := entityValues(req.Entities, models.EntityEquipmentID)
	types := entityValues(req.Entities, models.EntityEquipmentType)
	if len(ids) == 0 && len(types) == 0 {
		return nil, stderrors.NewPlanUnavailableError(
			string(models.IntentEquipmentStatus), "status lookup needs an equipment id or type")
	}

	var c clause
	c.in("equipment_id", ids)
	c.in("equipment_type", types)

	return &models.QueryPlan{
		SQLTemplate: "SELECT equipment_id, name, equipment_type, status, updated_at FROM equipment" +
			c.where() + " ORDER BY equipment_id LIMIT 100",
		Parameters: c.args,
		Confidence: 0.85,
	}, nil
}

func buildLastExecuted(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("m.equipment_id", entityValues(req.Entities, models.EntityEquipmentID))
	c.in("e.equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("m.maintenance_type", entityValues(req.Entities, models.EntityMaintenanceType))

	// Execution history means completed work: the non-null completion
	// timestamp filter is what separates this intent from planning ones.
	return &models.QueryPlan{
		SQLTemplate: "SELECT m.equipment_id, e.name, m.maintenance_type, m.executed_at" +
			" FROM maintenance_orders m JOIN equipment e ON e.equipment_id = m.equipment_id" +
			" WHERE m.executed_at IS NOT NULL" + c.and() +
			" ORDER BY m.executed_at DESC LIMIT 10",
		Parameters: c.args,
		Confidence: 0.9,
	}, nil
}

func buildUpcoming(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("m.equipment_id", entityValues(req.Entities, models.EntityEquipmentID))
	c.in("e.equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("m.maintenance_type", entityValues(req.Entities, models.EntityMaintenanceType))
	if from, to, ok := firstDateRange(req.Entities); ok {
		c.between("m.planned_for", from, to)
	}

	return &models.QueryPlan{
		SQLTemplate: "SELECT m.equipment_id, e.name, m.maintenance_type, m.planned_for" +
			" FROM maintenance_orders m JOIN equipment e ON e.equipment_id = m.equipment_id" +
			" WHERE m.executed_at IS NULL AND m.planned_for >= CURRENT_DATE" + c.and() +
			" ORDER BY m.planned_for ASC LIMIT 20",
		Parameters: c.args,
		Confidence: 0.9,
	}, nil
}

func buildHistory(req *Request) (*models.QueryPlan, error) {
	ids := entityValues(req.Entities, models.EntityEquipmentID)
	types := entityValues(req.Entities, models.EntityEquipmentType)
	if len(ids) == 0 && len(types) == 0 {
		return nil, stderrors.NewPlanUnavailableError(
			string(models.IntentMaintenanceHistory), "history needs an equipment id or type")
	}

	var c clause
	c.in("m.equipment_id", ids)
	c.in("e.equipment_type", types)
	c.in("m.maintenance_type", entityValues(req.Entities, models.EntityMaintenanceType))
	if from, to, ok := firstDateRange(req.Entities); ok {
		c.between("m.executed_at", from, to)
	}

	return &models.QueryPlan{
		SQLTemplate: "SELECT m.equipment_id, e.name, m.maintenance_type, m.executed_at, m.notes" +
			" FROM maintenance_orders m JOIN equipment e ON e.equipment_id = m.equipment_id" +
			" WHERE m.executed_at IS NOT NULL" + c.and() +
			" ORDER BY m.executed_at DESC LIMIT 100",
		Parameters: c.args,
		Confidence: 0.85,
	}, nil
}

func buildFailureAnalysis(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("e.equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("e.location_code", entityValues(req.Entities, models.EntityLocationCode))
	if from, to, ok := firstDateRange(req.Entities); ok {
		c.between("m.executed_at", from, to)
	}

	return &models.QueryPlan{
		SQLTemplate: "SELECT e.equipment_type, COUNT(*) AS failure_count" +
			" FROM maintenance_orders m JOIN equipment e ON e.equipment_id = m.equipment_id" +
			" WHERE m.maintenance_type = 'Corrective'" + c.and() +
			" GROUP BY e.equipment_type ORDER BY failure_count DESC",
		Parameters: c.args,
		Confidence: 0.75,
	}, nil
}

func buildEquipmentSearch(req *Request) (*models.QueryPlan, error) {
	var c clause
	c.in("equipment_id", entityValues(req.Entities, models.EntityEquipmentID))
	c.in("equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("status", entityValues(req.Entities, models.EntityStatus))
	c.in("location_code", entityValues(req.Entities, models.EntityLocationCode))
	if len(c.args) == 0 {
		return nil, stderrors.NewPlanUnavailableError(
			string(models.IntentEquipmentSearch), "search needs at least one filter entity")
	}

	return &models.QueryPlan{
		SQLTemplate: "SELECT equipment_id, name, equipment_type, status, location_code FROM equipment" +
			c.where() + " ORDER BY equipment_id LIMIT 50",
		Parameters: c.args,
		Confidence: 0.8,
	}, nil
}

func buildLocationSearch(req *Request) (*models.QueryPlan, error) {
	locations := entityValues(req.Entities, models.EntityLocationCode)
	if len(locations) == 0 {
		return nil, stderrors.NewPlanUnavailableError(
			string(models.IntentLocationSearch), "location search needs a location code")
	}

	var c clause
	c.in("location_code", locations)
	c.in("equipment_type", entityValues(req.Entities, models.EntityEquipmentType))
	c.in("status", entityValues(req.Entities, models.EntityStatus))

	return &models.QueryPlan{
		SQLTemplate: "SELECT equipment_id, name, equipment_type, status, location_code FROM equipment" +
			c.where() + " ORDER BY location_code, equipment_id LIMIT 100",
		Parameters: c.args,
		Confidence: 0.85,
	}, nil
}
