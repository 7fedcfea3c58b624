// Package reports turns read-only financial rows into the dashboard reports:
// monthly cash flow, payables by supplier and top clients by settled revenue.
package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/internal/records"
)

// Kind identifies a report.
type Kind string

const (
	KindCashFlow             Kind = "cash-flow"
	KindPayablesDistribution Kind = "payables-distribution"
	KindTopClients           Kind = "top-clients"
)

// Kinds lists every report in dashboard order.
func Kinds() []Kind {
	return []Kind{KindCashFlow, KindPayablesDistribution, KindTopClients}
}

// ParseKind resolves a report name. "payables" is accepted as a short alias.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindCashFlow:
		return KindCashFlow, nil
	case KindPayablesDistribution, "payables":
		return KindPayablesDistribution, nil
	case KindTopClients:
		return KindTopClients, nil
	}
	return "", fmt.Errorf("reports: unknown report %q", name)
}

const (
	// PayablesLimit caps the supplier distribution.
	PayablesLimit = 10
	// TopClientsLimit caps the client ranking.
	TopClientsLimit = 5
)

// Reader is the read-only row source reports are computed from.
type Reader interface {
	Clients(ctx context.Context) ([]records.Client, error)
	Payables(ctx context.Context) ([]records.PayableEntry, error)
	Receivables(ctx context.Context) ([]records.ReceivableEntry, error)
	LedgerEntries(ctx context.Context) ([]records.LedgerEntry, error)
}

// MonthlyFlow is the total of one entry type within one calendar month.
type MonthlyFlow struct {
	Month string            `json:"month"`
	Type  records.EntryType `json:"type"`
	Total decimal.Decimal   `json:"total"`
}

// CashFlowReport lists monthly totals ordered by month.
type CashFlowReport struct {
	Rows   []MonthlyFlow `json:"rows"`
	NoData bool          `json:"no_data"`
}

// SupplierTotal is one ranked supplier.
type SupplierTotal struct {
	Rank     int             `json:"rank"`
	Supplier string          `json:"supplier"`
	Total    decimal.Decimal `json:"total"`
}

// PayablesReport holds the largest suppliers by amount owed.
type PayablesReport struct {
	Rows   []SupplierTotal `json:"rows"`
	NoData bool            `json:"no_data"`
}

// ClientRevenue is one ranked client with its settled revenue.
type ClientRevenue struct {
	Rank      int             `json:"rank"`
	ClientID  int64           `json:"client_id"`
	Client    string          `json:"client"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formatted"`
}

// Concentration summarises how much of the top clients' revenue comes from the leader.
type Concentration struct {
	LeadingClient  string          `json:"leading_client"`
	LeadingAmount  decimal.Decimal `json:"leading_amount"`
	Sum            decimal.Decimal `json:"sum"`
	Share          decimal.Decimal `json:"share"`
	SharePercent   decimal.Decimal `json:"share_percent"`
	FormattedSum   string          `json:"formatted_sum"`
	FormattedShare string          `json:"formatted_share"`
}

// TopClientsResult is the client ranking plus its concentration metrics.
// Metrics is nil when no client has settled revenue.
type TopClientsResult struct {
	Rows    []ClientRevenue   `json:"rows"`
	Metrics *Concentration    `json:"metrics,omitempty"`
	Orphans []OrphanReference `json:"orphans,omitempty"`
	NoData  bool              `json:"no_data"`
}

// OrphanCount reports how many settled receivables were skipped.
func (r TopClientsResult) OrphanCount() int {
	return len(r.Orphans)
}

// OrphanReference records a settled receivable whose client does not exist
// or that has no client at all (Unassigned). It is reported alongside the
// result and never aborts a build.
type OrphanReference struct {
	ReceivableID int64 `json:"receivable_id"`
	ClientID     int64 `json:"client_id"`
	Unassigned   bool  `json:"unassigned,omitempty"`
}

func (o OrphanReference) Error() string {
	if o.Unassigned {
		return fmt.Sprintf("reports: receivable %d has no client", o.ReceivableID)
	}
	return fmt.Sprintf("reports: receivable %d references unknown client %d", o.ReceivableID, o.ClientID)
}

// MalformedAmountError aborts a report when a row carries an amount that
// cannot be interpreted.
type MalformedAmountError struct {
	Report Kind
	Entity string
	ID     int64
	Value  string
	Err    error
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("reports: %s: %s %d has malformed amount %q: %v", e.Report, e.Entity, e.ID, e.Value, e.Err)
}

func (e *MalformedAmountError) Unwrap() error {
	return e.Err
}
