// Package pdf renders printable quote documents with gofpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
)

// ContentType is the MIME type of rendered documents.
const ContentType = "application/pdf"

const (
	fontFamily = "Helvetica"
	maxNameLen = 48
)

// Renderer implements ports.DocumentRenderer. It uses the PDF core fonts,
// so text is written in cp1252, which covers Portuguese.
type Renderer struct {
	shopName string
	footer   string
	now      func() time.Time
}

// NewRenderer creates a renderer printing the shop identity from cfg.
func NewRenderer(cfg config.DocumentsConfig) *Renderer {
	return &Renderer{shopName: cfg.ShopName, footer: cfg.Footer, now: time.Now}
}

// ContentType implements ports.DocumentRenderer.
func (r *Renderer) ContentType() string {
	return ContentType
}

// Render implements ports.DocumentRenderer.
func (r *Renderer) Render(ctx context.Context, q *domain.Quote) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(tr("Orçamento "+q.Number), false)
	doc.SetCreator(r.shopName, false)
	doc.SetCreationDate(r.now())
	doc.AddPage()

	doc.SetFont(fontFamily, "B", 16)
	doc.CellFormat(0, 10, tr(r.shopName), "", 1, "L", false, 0, "")

	doc.SetFont(fontFamily, "B", 13)
	doc.CellFormat(0, 8, tr("Orçamento "+q.Number), "", 1, "L", false, 0, "")

	doc.SetFont(fontFamily, "", 10)
	r.field(doc, tr, "Status", string(q.Status))
	r.field(doc, tr, "Cliente", clientName(q))
	r.field(doc, tr, "Veículo", vehicleLabel(q))
	r.field(doc, tr, "Data", q.QuoteDate.Display())
	r.field(doc, tr, "Validade", q.ValidUntil.Display())
	doc.Ln(4)

	if parts := q.PartsLines(); len(parts) > 0 {
		r.tableHeader(doc, tr, "Peças", "Qtd.", "Valor unit.")

		for _, l := range parts {
			r.row(doc, tr, l.Part.Name, fmt.Sprintf("%d", l.Quantity), l.UnitPrice.Display(), l.Subtotal().Display())
		}

		doc.Ln(3)
	}

	if labor := q.LaborLines(); len(labor) > 0 {
		r.tableHeader(doc, tr, "Serviços", "Horas", "Valor hora")

		for _, l := range labor {
			r.row(doc, tr, l.Service.Name, l.Hours.String(), l.HourlyRate.Display(), l.Subtotal().Display())
		}

		doc.Ln(3)
	}

	doc.SetFont(fontFamily, "B", 12)
	doc.CellFormat(0, 8, tr("Total: "+q.Total().Display()), "T", 1, "R", false, 0, "")

	if r.footer != "" {
		doc.Ln(6)
		doc.SetFont(fontFamily, "I", 8)
		doc.MultiCell(0, 4, tr(r.footer), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) field(doc *gofpdf.Fpdf, tr func(string) string, label, value string) {
	doc.SetFont(fontFamily, "B", 10)
	doc.CellFormat(30, 6, tr(label+":"), "", 0, "L", false, 0, "")
	doc.SetFont(fontFamily, "", 10)
	doc.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func (r *Renderer) tableHeader(doc *gofpdf.Fpdf, tr func(string) string, item, amount, price string) {
	doc.SetFont(fontFamily, "B", 10)
	doc.SetFillColor(240, 240, 240)
	doc.CellFormat(95, 7, tr(item), "B", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, tr(amount), "B", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, tr(price), "B", 0, "R", true, 0, "")
	doc.CellFormat(0, 7, "Subtotal", "B", 1, "R", true, 0, "")
	doc.SetFont(fontFamily, "", 10)
}

func (r *Renderer) row(doc *gofpdf.Fpdf, tr func(string) string, name, amount, price, subtotal string) {
	doc.CellFormat(95, 6, tr(truncate(name, maxNameLen)), "", 0, "L", false, 0, "")
	doc.CellFormat(20, 6, amount, "", 0, "R", false, 0, "")
	doc.CellFormat(35, 6, tr(price), "", 0, "R", false, 0, "")
	doc.CellFormat(0, 6, tr(subtotal), "", 1, "R", false, 0, "")
}

func clientName(q *domain.Quote) string {
	if name := q.ClientName(); name != "" {
		return name
	}

	return q.ClientID
}

func vehicleLabel(q *domain.Quote) string {
	if q.Vehicle != nil {
		return q.Vehicle.Label()
	}

	return q.VehicleID
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-3]) + "..."
}
