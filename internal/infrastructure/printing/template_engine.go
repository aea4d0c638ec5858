package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// ContractParty is the lessor or lessee block of a contract
type ContractParty struct {
	Name      string
	Document  string
	Email     string
	Phone     string
	Address   string
	TradeName string
}

// ContractItem is one equipment line
type ContractItem struct {
	Code             string
	Name             string
	Quantity         int
	Days             int
	UnitPrice        decimal.Decimal
	Subtotal         decimal.Decimal
	ReplacementValue decimal.Decimal
}

// Contract is everything printed on a rental contract
type Contract struct {
	Number          string
	Status          string
	Lessor          ContractParty
	Lessee          ContractParty
	StartDate       time.Time
	EndDate         time.Time
	Days            int
	Items           []ContractItem
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	DeliveryAddress string
	Notes           string
	City            string
	GeneratedAt     time.Time
}

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("printing").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse templates", err)
	}
	return &TemplateEngine{templates: tmpl}, nil
}

// RenderContract returns the contract HTML
func (e *TemplateEngine) RenderContract(c *Contract) (string, error) {
	if c == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "contract is nil", nil)
	}
	if c.GeneratedAt.IsZero() {
		c.GeneratedAt = time.Now()
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, "contract.html", c); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute contract template", err)
	}
	return buf.String(), nil
}

// ContractFooter is the page-number footer printed on contracts
const ContractFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
	`Página <span class="pageNumber"></span> de <span class="totalPages"></span></div>`

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"date":     formatDate,
		"dateTime": formatDateTime,
		"upper":    strings.ToUpper,
		"inc":      func(i int) int { return i + 1 },
		"nonZero":  func(d decimal.Decimal) bool { return !d.IsZero() },
	}
}

// formatMoney renders a value the Brazilian way: 1234.5 -> "R$ 1.234,50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(c)
	}
	return sign + "R$ " + b.String() + "," + decPart
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
