// internal/engine/executor/executor.go
package executor

import (
	"context"
	"database/sql"
	"time"

	stderrors "maintquery/internal/common/errors"
	"maintquery/internal/common/logger"
	"maintquery/internal/models"
)

// Executor runs validated read-only plans against Postgres and returns rows
// as generic maps so the answer layer can narrate any result shape.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

func NewExecutor(db *sql.DB, timeout time.Duration, log logger.Logger) *Executor {
	return &Executor{
		db:      db,
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"component": "sql-executor"}),
	}
}

// Execute binds the plan's parameters and runs its statement under the
// configured timeout. Only plans that already passed validation reach here.
func (e *Executor) Execute(ctx context.Context, plan *models.QueryPlan) ([]map[string]interface{}, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(queryCtx, plan.SQLTemplate, plan.Parameters...)
	if err != nil {
		if queryCtx.Err() != nil {
			return nil, stderrors.NewExecutionTimeoutError(err.Error())
		}
		return nil, stderrors.NewExecutionFailureError(err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, stderrors.NewExecutionFailureError(err)
	}

	e.logger.Debug("plan executed", map[string]interface{}{
		"generator": plan.Generator,
		"rowCount":  len(results),
		"duration":  time.Since(start).String(),
	})

	return results, nil
}

// scanRows materializes the result set into ordered column maps. Byte slices
// become strings so JSON rendering stays readable.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
