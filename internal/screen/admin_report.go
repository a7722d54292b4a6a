package screen

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/dental-console/internal/pdf"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"go.uber.org/zap"
)

// MsgLoadReport is shown when any part of the report cannot be fetched
const MsgLoadReport = "Failed to load report data."

// LoadClinicReport fetches the summary, revenue, inventory and cases together; one
// failure fails the whole report.
func LoadClinicReport(ctx context.Context, d Deps, clinic, preparedBy string) (*pdf.ClinicReport, error) {
	report := &pdf.ClinicReport{ClinicName: clinic, PreparedBy: preparedBy}

	err := resource.Parallel(ctx,
		func(ctx context.Context) (err error) {
			report.Summary, err = d.Admin.DashboardSummary(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			report.Revenue, err = d.Admin.RevenueDashboard(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			report.Inventory, err = d.Admin.Inventory(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			report.Cases, err = d.Admin.Cases(ctx)
			return err
		},
	)
	if err != nil {
		d.logger().Warn("failed to load clinic report", zap.Error(err))
		return nil, fmt.Errorf("failed to load clinic report: %w", err)
	}
	return report, nil
}

// ExportClinicReport loads the report and renders it as PDF bytes
func ExportClinicReport(ctx context.Context, d Deps, clinic, preparedBy string) ([]byte, error) {
	report, err := LoadClinicReport(ctx, d, clinic, preparedBy)
	if err != nil {
		return nil, err
	}
	return pdf.NewReportGenerator(d.logger()).Generate(report)
}
