package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// Currency prefix used in the report; the core PDF fonts have no rupee glyph
const currency = "INR "

// ReportGenerator renders the clinic report
type ReportGenerator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReportGenerator creates a new ReportGenerator
func NewReportGenerator(logger *zap.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logger,
		now:    time.Now,
	}
}

// ClinicReport contains all data needed for report generation
type ClinicReport struct {
	ClinicName string
	PreparedBy string
	Summary    model.DashboardSummary
	Revenue    model.RevenueDashboard
	Inventory  []model.InventoryItem
	Cases      []model.CaseCard
}

// Generate creates a PDF from the provided data
func (g *ReportGenerator) Generate(data *ClinicReport) ([]byte, error) {
	g.logger.Info("generating clinic report",
		zap.String("clinic", data.ClinicName),
		zap.Int("inventory_items", len(data.Inventory)),
		zap.Int("cases", len(data.Cases)),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	g.addTitle(pdf, tr, data)
	g.addSummary(pdf, tr, data.Summary)
	g.addRevenue(pdf, tr, data.Revenue)
	g.addInventory(pdf, tr, data.Inventory)
	g.addCasePipeline(pdf, tr, data.Cases)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("clinic report generated",
		zap.Int("size_bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func (g *ReportGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, data *ClinicReport) {
	name := data.ClinicName
	if name == "" {
		name = "Dental Clinic"
	}
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, tr(name+" Report"), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	if data.PreparedBy != "" {
		pdf.CellFormat(0, 8, tr("Prepared by: "+data.PreparedBy), "", 1, "L", false, 0, "")
	}
	if data.Summary.AsOf != "" {
		pdf.CellFormat(0, 8, tr("Data as of: "+data.Summary.AsOf), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", g.now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

func (g *ReportGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *ReportGenerator) line(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.CellFormat(0, 6, tr(text), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) addSummary(pdf *gofpdf.Fpdf, tr func(string) string, s model.DashboardSummary) {
	g.addSectionHeader(pdf, "Today")

	g.line(pdf, tr, fmt.Sprintf("Appointments: %d (%+d vs yesterday)", s.TodayAppointments, s.TodayAppointmentsDelta))
	revenue := "Revenue: " + money(s.TodaysRevenue)
	if s.TodaysRevenueDeltaPercent != nil {
		revenue += fmt.Sprintf(" (%+.1f%%)", *s.TodaysRevenueDeltaPercent)
	}
	g.line(pdf, tr, revenue)
	g.line(pdf, tr, fmt.Sprintf("Active cases: %d", s.ActiveCases))
	g.line(pdf, tr, fmt.Sprintf("Low stock items: %d", s.LowStockItems))
	g.line(pdf, tr, fmt.Sprintf("New patients: %d, returning: %d, cancelled visits: %d",
		s.PatientSnapshot.NewPatientsToday,
		s.PatientSnapshot.ReturningPatientsToday,
		s.PatientSnapshot.CancelledAppointmentsToday))
	pdf.Ln(5)
}

func (g *ReportGenerator) addRevenue(pdf *gofpdf.Fpdf, tr func(string) string, r model.RevenueDashboard) {
	g.addSectionHeader(pdf, "Revenue")

	total := "This month: " + money(r.ThisMonthTotal)
	if r.GrowthPercent != nil {
		total += fmt.Sprintf(" (%+.1f%% vs last month)", *r.GrowthPercent)
	}
	g.line(pdf, tr, total)
	g.line(pdf, tr, "Pending / overdue: "+money(r.PendingOverdue))
	g.line(pdf, tr, "Average per day: "+money(r.AvgPerDay))

	if len(r.Last6Months) == 0 {
		pdf.Ln(5)
		return
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Last 6 months:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, m := range r.Last6Months {
		pdf.CellFormat(40, 5, tr(m.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, money(m.Value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (g *ReportGenerator) addInventory(pdf *gofpdf.Fpdf, tr func(string) string, items []model.InventoryItem) {
	g.addSectionHeader(pdf, "Inventory")

	if len(items) == 0 {
		pdf.CellFormat(0, 8, "No inventory items recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	widths := []float64{30, 55, 35, 20, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Code", "Name", "Category", "Stock", "Status"} {
		pdf.CellFormat(widths[i], 6, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	for _, item := range items {
		if status.IsLowStock(item.Status) {
			pdf.SetTextColor(180, 0, 0)
		}
		cells := []string{item.ID, item.Name, item.Category, strconv.Itoa(item.Stock), item.Status}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 5, tr(c), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(5)
}

func (g *ReportGenerator) addCasePipeline(pdf *gofpdf.Fpdf, tr func(string) string, cases []model.CaseCard) {
	g.addSectionHeader(pdf, "Case Pipeline")

	if len(cases) == 0 {
		pdf.CellFormat(0, 8, "No cases recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	counts := make(map[model.CaseStage]int)
	for _, c := range cases {
		counts[c.Stage]++
	}
	for _, stage := range model.AllStages {
		g.line(pdf, tr, fmt.Sprintf("%s: %d", status.StageLabel(stage), counts[stage]))
	}
	g.line(pdf, tr, fmt.Sprintf("Total: %d", len(cases)))
	pdf.Ln(5)
}

func money(v float64) string {
	return currency + strconv.FormatFloat(v, 'f', 2, 64)
}
