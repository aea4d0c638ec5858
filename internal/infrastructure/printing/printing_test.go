package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleContract() *Contract {
	return &Contract{
		Number:    "LOC-000042",
		Lessor:    ContractParty{Name: "Andaimes Paulista Ltda", Document: "11.222.333/0001-81"},
		Lessee:    ContractParty{Name: "Obras Silva & Filhos", Document: "529.982.247-25"},
		StartDate: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		Days:      7,
		Items: []ContractItem{{
			Code:             "BET-400",
			Name:             "Betoneira 400L",
			Quantity:         2,
			Days:             7,
			UnitPrice:        decimal.RequireFromString("350"),
			Subtotal:         decimal.RequireFromString("700"),
			ReplacementValue: decimal.RequireFromString("4500"),
		}},
		Subtotal:    decimal.RequireFromString("700"),
		DeliveryFee: decimal.RequireFromString("80"),
		Total:       decimal.RequireFromString("780"),
		City:        "Campinas",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTemplateEngine_RenderContract(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	html, err := engine.RenderContract(sampleContract())
	require.NoError(t, err)

	assert.Contains(t, html, "LOC-000042")
	assert.Contains(t, html, "02/03/2026 a 09/03/2026 (7 dia(s))")
	assert.Contains(t, html, "Betoneira 400L")
	assert.Contains(t, html, "R$ 4.500,00")
	assert.Contains(t, html, "Frete: R$ 80,00")
	assert.Contains(t, html, "Total: R$ 780,00")
	assert.Contains(t, html, "Campinas, 01/03/2026")
	assert.Contains(t, html, "Obras Silva &amp; Filhos")
	assert.NotContains(t, html, "Desconto:")

	_, err = engine.RenderContract(nil)
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":       "R$ 0,00",
		"5.5":     "R$ 5,50",
		"1234.56": "R$ 1.234,56",
		"1000000": "R$ 1.000.000,00",
		"-250.1":  "-R$ 250,10",
		"999.999": "R$ 1.000,00",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Empty(t, formatDate(time.Time{}))
	assert.Equal(t, "31/01/2026", formatDate(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31/01/2026 14:05", formatDateTime(time.Date(2026, 1, 31, 14, 5, 0, 0, time.UTC)))
}

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.001)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.001)
	assert.InDelta(t, mmToInches(15), params.marginBottom, 0.001)
	assert.False(t, params.landscape)

	t.Run("footer widens a thin bottom margin", func(t *testing.T) {
		params := buildPrintParams(&RenderRequest{
			PaperSize:  PaperSizeLetter,
			Margins:    Margins{Bottom: 5},
			FooterHTML: ContractFooter,
			Landscape:  true,
		})
		assert.InDelta(t, mmToInches(215.9), params.paperWidth, 0.001)
		assert.InDelta(t, mmToInches(12), params.marginBottom, 0.001)
		assert.True(t, params.landscape)
	})
}

func TestBuildCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))

	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>oi</p>", Title: "A<B"})
	assert.Contains(t, wrapped, "<title>A&lt;B</title>")
	assert.Contains(t, wrapped, "<body><p>oi</p></body>")
}

func TestValidateRequest(t *testing.T) {
	var renderErr *RenderError

	require.True(t, errors.As(validateRequest(nil), &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	require.True(t, errors.As(validateRequest(&RenderRequest{HTML: "  \n"}), &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	require.True(t, errors.As(validateRequest(&RenderRequest{HTML: "<p/>", PaperSize: "A0"}), &renderErr))
	assert.Equal(t, ErrCodeInvalidPaperSize, renderErr.Code)

	req := &RenderRequest{HTML: "<p/>"}
	require.NoError(t, validateRequest(req))
	assert.Equal(t, PaperSizeA4, req.PaperSize)
}

func TestChromedpRenderer_RejectsBeforeLaunch(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{}, zap.NewNop())
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.timeout)
	_, err := r.Render(context.Background(), &RenderRequest{})
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}
