package fiscal

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(t *testing.T) *Invoice {
	t.Helper()
	bookingID := uuid.New()
	inv, err := NewDraft(uuid.New(), uuid.New(), &bookingID, Service{
		Description: "Locação de equipamentos LOC-000001",
		Code:        "3.01",
		Amount:      decimal.RequireFromString("1000"),
		ISSRate:     decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"processando_autorizacao", StatusProcessing, true},
		{"autorizado", StatusAuthorized, true},
		{"erro_autorizacao", StatusError, true},
		{"cancelado", StatusCancelled, true},
		{" AUTORIZADO ", StatusAuthorized, true},
		{"denegado", "", false},
	}
	for _, tt := range tests {
		got, ok := MapGatewayStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewDraft(t *testing.T) {
	inv := newDraft(t)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.True(t, strings.HasPrefix(inv.Reference, "lf"))
	assert.Len(t, inv.Reference, 34)
	assert.Equal(t, "25", inv.ISSValue.String())
	assert.NoError(t, inv.CanIssue())
	assert.NoError(t, inv.CanDelete())
	assert.Error(t, inv.CanSync())

	_, err := NewDraft(uuid.New(), uuid.New(), nil, Service{Description: "x", Amount: decimal.NewFromInt(1), ISSRate: decimal.NewFromInt(6)})
	assert.Equal(t, "INVALID_ISS_RATE", shared.ErrorCode(err))
	_, err = NewDraft(uuid.New(), uuid.Nil, nil, Service{Description: "x", Amount: decimal.NewFromInt(1)})
	assert.Error(t, err)
}

func TestInvoiceAuthorizationFlow(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.MarkSubmitted(GatewayResult{}))
	assert.Equal(t, StatusProcessing, inv.Status)
	assert.NotNil(t, inv.IssuedAt)
	assert.Error(t, inv.CanIssue())

	require.NoError(t, inv.ApplyGatewayResult(GatewayResult{
		Status:           "autorizado",
		Number:           "1234",
		VerificationCode: "ABCD-1234",
		PDFURL:           "https://focus/danfse.pdf",
		XMLURL:           "https://focus/nfse.xml",
	}))
	assert.Equal(t, StatusAuthorized, inv.Status)
	assert.Equal(t, "1234", inv.Number)
	assert.NotNil(t, inv.AuthorizedAt)
	assert.Error(t, inv.CanDelete())

	events := inv.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeInvoiceStatusChanged, events[1].EventType())

	assert.Error(t, inv.ApplyGatewayResult(GatewayResult{Status: "desconhecido"}))
}

func TestInvoiceRejectAndReissue(t *testing.T) {
	inv := newDraft(t)
	inv.MarkRejected("CNPJ do prestador inválido")
	assert.Equal(t, StatusError, inv.Status)
	assert.NoError(t, inv.CanIssue())
	assert.NoError(t, inv.CanDelete())

	require.NoError(t, inv.MarkSubmitted(GatewayResult{Status: "erro_autorizacao", ErrorMessage: "Serviço não permitido"}))
	assert.Equal(t, StatusError, inv.Status)
	assert.Equal(t, "Serviço não permitido", inv.ErrorMessage)
}

func TestInvoiceCancel(t *testing.T) {
	inv := newDraft(t)
	_, err := inv.ValidateCancel("Valor informado incorretamente")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, inv.MarkSubmitted(GatewayResult{Status: "autorizado"}))
	_, err = inv.ValidateCancel("curto")
	assert.Equal(t, "INVALID_REASON", shared.ErrorCode(err))
	_, err = inv.ValidateCancel(strings.Repeat("a", 256))
	assert.Error(t, err)

	reason, err := inv.ValidateCancel("  Valor informado incorretamente ")
	require.NoError(t, err)
	require.NoError(t, inv.Cancelled(reason, GatewayResult{}))
	assert.Equal(t, StatusCancelled, inv.Status)
	assert.Equal(t, "Valor informado incorretamente", inv.CancelReason)
	assert.NotNil(t, inv.CancelledAt)
}
