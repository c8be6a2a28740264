// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/domain/workorder"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Production.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(cfg.Production.WkhtmltopdfPath)
	}
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateProductionSheet renders the printable sheet handed to the mixing line
func (s *Service) GenerateProductionSheet(wo *workorder.WorkOrder) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(s.sheetData(wo))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set(wo.Code)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]/[topage]")
	page.FooterLeft.Set(wo.Code)
	page.FooterFontSize.Set(8)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) sheetData(wo *workorder.WorkOrder) SheetData {
	snap := wo.Snapshot.Data()
	data := SheetData{
		Company:     s.config.App.CompanyName,
		PrintedAt:   s.now().Format("2006-01-02 15:04"),
		Code:        wo.Code,
		Status:      string(wo.Status),
		ProductCode: snap.ProductCode,
		ProductName: snap.ProductName,
		SeriesName:  snap.SeriesName,
		Fragrance:   fmt.Sprintf("%s %s", snap.FragranceCode, snap.FragranceName),
		Formula:     fmt.Sprintf("%.2f%% / PG %.2f%% / VG %.2f%%", snap.Percentage, snap.PGRatio, snap.VGRatio),
		NicotineMg:  snap.NicotineMg,
		Target:      formatQty(wo.TargetQuantity),
		Actual:      formatQty(wo.ActualQuantity),
		Unit:        wo.Unit,
		HasShortage: wo.HasShortage,
		CreatedBy:   wo.CreatedByName,
	}

	for _, item := range wo.BOMItems {
		data.Lines = append(data.Lines, SheetLine{
			Category: string(item.Category),
			Code:     item.Code,
			Name:     item.Name,
			Quantity: formatQty(item.Quantity),
			Used:     formatQty(item.UsedQuantity),
			Stock:    formatQty(item.CurrentStock),
			Unit:     item.Unit,
			Short:    item.UsedQuantity > item.CurrentStock,
		})
	}

	for _, rec := range wo.TimeRecords {
		data.Hours += rec.Hours
		data.Overtime += rec.OvertimeHours
		data.TimeRecords = append(data.TimeRecords, SheetTime{
			Personnel: rec.Personnel,
			WorkDate:  rec.WorkDate,
			Span:      rec.StartTime + "-" + rec.EndTime,
			Hours:     rec.Hours,
		})
	}
	data.Hours = formula.RoundTo(data.Hours, 2)
	data.Overtime = formula.RoundTo(data.Overtime, 2)

	return data
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data SheetData) (string, error) {
	tmpl := template.Must(template.New("sheet").Parse(sheetTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func formatQty(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// SheetData represents the data passed to the production sheet template
type SheetData struct {
	Company     string
	PrintedAt   string
	Code        string
	Status      string
	ProductCode string
	ProductName string
	SeriesName  string
	Fragrance   string
	Formula     string
	NicotineMg  float64
	Target      string
	Actual      string
	Unit        string
	HasShortage bool
	CreatedBy   string
	Lines       []SheetLine
	TimeRecords []SheetTime
	Hours       float64
	Overtime    float64
}

// SheetLine is one BOM row on the sheet
type SheetLine struct {
	Category string
	Code     string
	Name     string
	Quantity string
	Used     string
	Stock    string
	Unit     string
	Short    bool
}

// SheetTime is one time record row on the sheet
type SheetTime struct {
	Personnel string
	WorkDate  string
	Span      string
	Hours     float64
}

const sheetTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Production Sheet {{.Code}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; font-size: 12px; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 12px; margin-bottom: 20px; }
        .title { font-size: 24px; font-weight: bold; color: #2563eb; }
        .meta td { padding: 3px 12px 3px 0; }
        table.grid { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
        table.grid th { background: #f8f9fa; text-align: left; border-bottom: 2px solid #dee2e6; padding: 6px; }
        table.grid td { border-bottom: 1px solid #eee; padding: 6px; }
        .num { text-align: right; }
        .short { color: #dc2626; font-weight: bold; }
        .warning { background: #fef2f2; border: 1px solid #fca5a5; padding: 8px; margin-bottom: 16px; }
        .sign td { padding-top: 36px; width: 33%; border-top: 1px solid #999; }
    </style>
</head>
<body>
    <div class="header">
        <div>{{.Company}}</div>
        <div class="title">Production Sheet {{.Code}}</div>
        <div>Printed {{.PrintedAt}} &middot; Status {{.Status}}</div>
    </div>

    <table class="meta">
        <tr><td>Product</td><td>{{.ProductCode}} {{.ProductName}}{{if .SeriesName}} ({{.SeriesName}}){{end}}</td></tr>
        <tr><td>Fragrance</td><td>{{.Fragrance}}</td></tr>
        <tr><td>Formula</td><td>{{.Formula}}</td></tr>
        {{if .NicotineMg}}<tr><td>Nicotine</td><td>{{.NicotineMg}} mg</td></tr>{{end}}
        <tr><td>Target</td><td>{{.Target}} {{.Unit}}</td></tr>
        <tr><td>Actual</td><td>{{.Actual}} {{.Unit}}</td></tr>
        <tr><td>Created by</td><td>{{.CreatedBy}}</td></tr>
    </table>

    {{if .HasShortage}}<div class="warning">Stock shortage recorded at completion</div>{{end}}

    <table class="grid">
        <thead>
            <tr><th>Category</th><th>Code</th><th>Name</th><th class="num">Required</th><th class="num">Used</th><th class="num">Stock</th><th>Unit</th></tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr{{if .Short}} class="short"{{end}}>
                <td>{{.Category}}</td><td>{{.Code}}</td><td>{{.Name}}</td>
                <td class="num">{{.Quantity}}</td><td class="num">{{.Used}}</td><td class="num">{{.Stock}}</td><td>{{.Unit}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    {{if .TimeRecords}}
    <table class="grid">
        <thead><tr><th>Personnel</th><th>Date</th><th>Time</th><th class="num">Hours</th></tr></thead>
        <tbody>
            {{range .TimeRecords}}
            <tr><td>{{.Personnel}}</td><td>{{.WorkDate}}</td><td>{{.Span}}</td><td class="num">{{.Hours}}</td></tr>
            {{end}}
            <tr><td colspan="3">Total (overtime {{.Overtime}})</td><td class="num">{{.Hours}}</td></tr>
        </tbody>
    </table>
    {{end}}

    <table class="sign">
        <tr><td>Mixed by</td><td>Checked by</td><td>Warehoused by</td></tr>
    </table>
</body>
</html>
`
