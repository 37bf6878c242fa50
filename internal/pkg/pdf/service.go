// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/pkg/money"
)

// Service renders order receipts
type Service struct {
	config *config.Config
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		tmpl: template.Must(template.New("receipt").Funcs(template.FuncMap{
			"eur": money.FormatEUR,
		}).Parse(receiptTemplate)),
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	OrderDate     string
	Order         order.Order
	TotalCents    int64
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// ReceiptFilename is the download name for an order's receipt
func ReceiptFilename(o order.Order) string {
	return fmt.Sprintf("receipt-%d.pdf", o.ID)
}

// GenerateReceipt renders a PDF receipt for an order
func (s *Service) GenerateReceipt(o order.Order) ([]byte, error) {
	htmlContent, err := s.RenderHTML(o)
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
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

// RenderHTML fills the receipt template for o
func (s *Service) RenderHTML(o order.Order) ([]byte, error) {
	data := ReceiptData{
		ReceiptNumber: fmt.Sprintf("HE-%06d", o.ID),
		OrderDate:     formatOrderDate(o),
		Order:         o,
		TotalCents:    o.TotalCents(),
		Company: CompanyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
			Website: s.config.Company.Website,
		},
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func formatOrderDate(o order.Order) string {
	t := o.CreatedTime()
	if t.IsZero() {
		return o.CreatedAt
	}
	return t.Format("January 2, 2006 15:04")
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .title { font-size: 28px; font-weight: bold; color: #15803d; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; width: 90px; }
        .total { font-size: 18px; font-weight: bold; text-align: right; }
        .badge { display: inline-block; padding: 2px 8px; border-radius: 4px; font-size: 12px; }
        .paid { background: #dcfce7; color: #166534; }
        .unpaid { background: #fee2e2; color: #991b1b; }
        .footer { margin-top: 40px; font-size: 12px; color: #6b7280; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Company.Name}}</div>
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        {{if .Company.Email}}<div>{{.Company.Email}}</div>{{end}}
        {{if .Company.Phone}}<div>{{.Company.Phone}}</div>{{end}}
    </div>

    <p>
        <strong>Receipt {{.ReceiptNumber}}</strong><br>
        Order #{{.Order.ID}} placed {{.OrderDate}}
        {{if .Order.Paid}}<span class="badge paid">Paid</span>{{else}}<span class="badge unpaid">Unpaid</span>{{end}}
    </p>

    <div class="section-title">Ship to</div>
    <p>
        {{.Order.Address.FullName}}<br>
        {{.Order.Address.Street}}<br>
        {{.Order.Address.Zip}} {{.Order.Address.City}}<br>
        {{.Order.Address.Country}}
    </p>

    <table class="items-table">
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
        {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{eur .PriceCents}}</td>
                <td class="num">{{eur .LineTotalCents}}</td>
            </tr>
        {{end}}
        </tbody>
    </table>

    <div class="total">Total: {{eur .TotalCents}}</div>

    <div class="footer">
        Thank you for shopping with {{.Company.Name}}.{{if .Company.Website}} {{.Company.Website}}{{end}}
    </div>
</body>
</html>
`
