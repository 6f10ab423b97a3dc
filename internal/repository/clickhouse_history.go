package repository

import (
	"context"
	"database/sql"
	"fmt"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/repository"
	pkgch "VixNav/pkg/clickhouse"
)

const (
	checksTable = "price_limit_checks"
	navTable    = "nav_estimates"
)

// ClickHouseHistory stores alerter checks and NAV estimates.
type ClickHouseHistory struct {
	client *pkgch.Client
	db     *sql.DB
}

var _ repository.History = (*ClickHouseHistory)(nil)

func NewClickHouseHistory(client *pkgch.Client) *ClickHouseHistory {
	return &ClickHouseHistory{client: client, db: client.DB()}
}

// SchemaStatements returns the idempotent DDL for the history tables.
func SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + checksTable + ` (
            ts DateTime64(3, 'Asia/Tokyo'),
            fund LowCardinality(String),
            closing Float64,
            lower Float64,
            upper Float64,
            initial_value Float64,
            current_value Float64,
            change_pct Float64,
            allowed_lower_pct Float64,
            allowed_upper_pct Float64,
            nav_per_share Float64,
            breach UInt8,
            alert_id String
        ) ENGINE = MergeTree ORDER BY (fund, ts)`,
		`CREATE TABLE IF NOT EXISTS ` + navTable + ` (
            ts DateTime64(3, 'Asia/Tokyo'),
            run String,
            calculation_date Date,
            near_future LowCardinality(String),
            near_price Float64,
            far_future LowCardinality(String),
            far_price Float64,
            fx_rate Float64,
            futures_value_usd Float64,
            estimated_nav Float64,
            published_nav Nullable(Float64),
            nav_difference Nullable(Float64),
            nav_difference_pct Nullable(Float64)
        ) ENGINE = ReplacingMergeTree ORDER BY run`,
	}
}

// InitSchema creates the history tables.
func (h *ClickHouseHistory) InitSchema(ctx context.Context) error {
	return h.client.InitSchema(ctx, SchemaStatements())
}

func (h *ClickHouseHistory) StoreCheck(ctx context.Context, r *models.CheckResult) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, fund, closing, lower, upper, initial_value, current_value, change_pct, allowed_lower_pct, allowed_upper_pct, nav_per_share, breach, alert_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", checksTable)
	if _, err := h.db.ExecContext(ctx, q, checkArgs(r)...); err != nil {
		return fmt.Errorf("store check: %w", err)
	}
	return nil
}

func (h *ClickHouseHistory) StoreNAV(ctx context.Context, n *models.NAVEstimate) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, run, calculation_date, near_future, near_price, far_future, far_price, fx_rate, futures_value_usd, estimated_nav, published_nav, nav_difference, nav_difference_pct) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", navTable)
	if _, err := h.db.ExecContext(ctx, q, navArgs(n)...); err != nil {
		return fmt.Errorf("store nav: %w", err)
	}
	return nil
}

func (h *ClickHouseHistory) Health(ctx context.Context) error {
	return h.client.Health(ctx)
}

func (h *ClickHouseHistory) Close() error {
	return h.client.Close()
}

func checkArgs(r *models.CheckResult) []interface{} {
	var breach uint8
	alertID := ""
	if r.Decision.Breach {
		breach = 1
	}
	if r.Alert != nil {
		alertID = r.Alert.ID
	}
	return []interface{}{
		r.Time,
		r.Fund,
		r.Closing.Price,
		r.Band.Lower,
		r.Band.Upper,
		r.InitialValue,
		r.CurrentValue,
		r.Decision.ChangePct,
		r.Decision.AllowedLowerPct,
		r.Decision.AllowedUpperPct,
		r.NAVPerShare,
		breach,
		alertID,
	}
}

func navArgs(n *models.NAVEstimate) []interface{} {
	return []interface{}{
		n.CalculatedAt,
		n.Timestamp,
		n.CalculationDate,
		n.NearFuture,
		n.NearPrice,
		n.FarFuture,
		n.FarPrice,
		n.FXRate,
		n.FuturesValueUSD,
		n.EstimatedNAV,
		n.PublishedNAV,
		n.Difference,
		n.DifferencePct,
	}
}
