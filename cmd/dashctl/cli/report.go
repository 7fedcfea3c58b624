package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/internal/reports"
	"github.com/finboard/finboard/internal/reports/export"
)

// ReportBuilder computes a report by kind.
type ReportBuilder interface {
	Build(ctx context.Context, kind reports.Kind) (any, error)
}

// ReportCmd prints a report computed directly from the store.
type ReportCmd struct {
	open    func(ctx context.Context) (ReportBuilder, func(), error)
	format  string
	timeout time.Duration
}

// NewReportCmd builds the "report" command. open is called once per run and
// returns the builder together with its cleanup.
func NewReportCmd(open func(ctx context.Context) (ReportBuilder, func(), error)) *cobra.Command {
	rc := &ReportCmd{open: open}
	cmd := &cobra.Command{
		Use:       "report <cash-flow|payables|top-clients>",
		Short:     "Compute and print a report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(reports.KindCashFlow), "payables", string(reports.KindPayablesDistribution), string(reports.KindTopClients)},
		RunE:      rc.run,
	}
	cmd.Flags().StringVar(&rc.format, "format", "table", "Output format: table or csv")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 30*time.Second, "Time allowed for loading rows")
	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	kind, err := reports.ParseKind(args[0])
	if err != nil {
		return err
	}
	if rc.format != "table" && rc.format != "csv" {
		return fmt.Errorf("unsupported format %q", rc.format)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	defer cancel()

	builder, cleanup, err := rc.open(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := builder.Build(ctx, kind)
	if err != nil {
		return fmt.Errorf("build %s: %w", kind, err)
	}
	if rc.format == "csv" {
		return export.Write(cmd.OutOrStdout(), report)
	}
	return WriteTable(cmd.OutOrStdout(), report)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteTable renders a report as an aligned text table.
func WriteTable(w io.Writer, report any) error {
	tw := newTable(w)
	switch r := report.(type) {
	case reports.CashFlowReport:
		if r.NoData {
			fmt.Fprintln(tw, "no ledger entries")
			break
		}
		fmt.Fprintln(tw, "MONTH\tTYPE\tTOTAL")
		for _, row := range r.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Month, row.Type, row.Total.StringFixed(2))
		}
	case reports.PayablesReport:
		if r.NoData {
			fmt.Fprintln(tw, "no payables")
			break
		}
		fmt.Fprintln(tw, "RANK\tSUPPLIER\tTOTAL")
		for _, row := range r.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Rank, row.Supplier, row.Total.StringFixed(2))
		}
	case reports.TopClientsResult:
		if r.NoData {
			fmt.Fprintln(tw, "no settled receivables")
		} else {
			fmt.Fprintln(tw, "RANK\tCLIENT\tREVENUE")
			for _, row := range r.Rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Rank, row.Client, row.Formatted)
			}
		}
		if m := r.Metrics; m != nil {
			fmt.Fprintf(tw, "\nTop %d total:\t%s\n", len(r.Rows), m.FormattedSum)
			fmt.Fprintf(tw, "%s share:\t%s\n", m.LeadingClient, m.FormattedShare)
		}
		if n := r.OrphanCount(); n > 0 {
			fmt.Fprintf(tw, "Skipped receivables:\t%d\n", n)
		}
	default:
		return fmt.Errorf("unsupported report %T", report)
	}
	return tw.Flush()
}
