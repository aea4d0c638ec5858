package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/locaflow/backend/internal/domain/fiscal"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	FocusNFeProductionURL = "https://api.focusnfe.com.br"
	FocusNFeSandboxURL    = "https://homologacao.focusnfe.com.br"
)

// NFSeRequest is everything the gateway needs to issue one service invoice
type NFSeRequest struct {
	IssuedAt       time.Time
	SimpleNational bool
	Provider       NFSeProvider
	Taker          NFSeTaker
	Service        NFSeService
}

// NFSeProvider is the issuing tenant
type NFSeProvider struct {
	CNPJ                  string
	MunicipalRegistration string
	IBGECode              string
}

// NFSeTaker is the invoiced customer
type NFSeTaker struct {
	Document string
	Name     string
	Email    string
	Phone    string
	Address  valueobject.Address
}

// NFSeService describes the billed service
type NFSeService struct {
	Description string
	ServiceCode string
	Amount      decimal.Decimal
	ISSRate     decimal.Decimal
	ISSWithheld bool
}

// FocusNFeClient talks to the Focus NFe v2 NFS-e API
type FocusNFeClient struct {
	rest *restClient
}

// NewFocusNFeClient creates a client. The token is sent as the basic auth user
func NewFocusNFeClient(cfg config.FocusNFeConfig, logger *zap.Logger) *FocusNFeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = FocusNFeProductionURL
		if cfg.Sandbox {
			baseURL = FocusNFeSandboxURL
		}
	}
	rest := newRestClient("focusnfe", baseURL, cfg.Timeout, logger)
	token := cfg.Token
	rest.authorize = func(req *http.Request) { req.SetBasicAuth(token, "") }
	rest.parseError = func(body gjson.Result) (string, string) {
		msg := body.Get("mensagem").String()
		if msg == "" {
			msg = joinGatewayErrors(body.Get("erros"))
		}
		return body.Get("codigo").String(), msg
	}
	return &FocusNFeClient{rest: rest}
}

// Issue submits the invoice under ref. The gateway answers asynchronously;
// the returned status is normally processando_autorizacao
func (c *FocusNFeClient) Issue(ctx context.Context, ref string, req NFSeRequest) (fiscal.GatewayResult, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodPost, "/v2/nfse?ref="+url.QueryEscape(ref), nfsePayload(req))
	if err != nil {
		return fiscal.GatewayResult{}, err
	}
	return parseNFSe(body), nil
}

// Query returns the current gateway state of ref
func (c *FocusNFeClient) Query(ctx context.Context, ref string) (fiscal.GatewayResult, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodGet, "/v2/nfse/"+url.PathEscape(ref), nil)
	if err != nil {
		return fiscal.GatewayResult{}, err
	}
	return parseNFSe(body), nil
}

// Cancel asks the municipality to cancel ref
func (c *FocusNFeClient) Cancel(ctx context.Context, ref, justification string) (fiscal.GatewayResult, error) {
	body, _, err := c.rest.doJSON(ctx, http.MethodDelete, "/v2/nfse/"+url.PathEscape(ref), map[string]string{
		"justificativa": justification,
	})
	if err != nil {
		return fiscal.GatewayResult{}, err
	}
	return parseNFSe(body), nil
}

// Download fetches a PDF or XML file. Relative gateway paths are resolved
// against the API host
func (c *FocusNFeClient) Download(ctx context.Context, fileURL string) ([]byte, string, error) {
	if fileURL == "" {
		return nil, "", fmt.Errorf("focusnfe: empty file url")
	}
	if strings.HasPrefix(fileURL, "/") {
		fileURL = c.rest.baseURL + fileURL
	}
	data, _, contentType, err := c.rest.do(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

func parseNFSe(body gjson.Result) fiscal.GatewayResult {
	r := fiscal.GatewayResult{
		Status:           body.Get("status").String(),
		Number:           body.Get("numero").String(),
		VerificationCode: body.Get("codigo_verificacao").String(),
		PDFURL:           body.Get("url").String(),
		XMLURL:           body.Get("caminho_xml_nota_fiscal").String(),
		ErrorMessage:     joinGatewayErrors(body.Get("erros")),
	}
	if r.ErrorMessage == "" && r.Status == "erro_autorizacao" {
		r.ErrorMessage = body.Get("mensagem_sefaz").String()
	}
	return r
}

func joinGatewayErrors(errs gjson.Result) string {
	var msgs []string
	errs.ForEach(func(_, e gjson.Result) bool {
		if m := e.Get("mensagem").String(); m != "" {
			if code := e.Get("codigo").String(); code != "" {
				m = code + ": " + m
			}
			msgs = append(msgs, m)
		}
		return true
	})
	return strings.Join(msgs, "; ")
}

func nfsePayload(req NFSeRequest) map[string]any {
	taker := map[string]any{
		"razao_social": req.Taker.Name,
		"email":        req.Taker.Email,
		"telefone":     req.Taker.Phone,
		"endereco": map[string]any{
			"logradouro":       req.Taker.Address.Street,
			"numero":           req.Taker.Address.Number,
			"complemento":      req.Taker.Address.Complement,
			"bairro":           req.Taker.Address.District,
			"codigo_municipio": req.Taker.Address.IBGECode,
			"uf":               req.Taker.Address.State,
			"cep":              req.Taker.Address.ZipCode,
		},
	}
	doc := valueobject.OnlyDigits(req.Taker.Document)
	if len(doc) == 11 {
		taker["cpf"] = doc
	} else {
		taker["cnpj"] = doc
	}

	return map[string]any{
		"data_emissao":             req.IssuedAt.Format(time.RFC3339),
		"optante_simples_nacional": req.SimpleNational,
		"prestador": map[string]any{
			"cnpj":                valueobject.OnlyDigits(req.Provider.CNPJ),
			"inscricao_municipal": req.Provider.MunicipalRegistration,
			"codigo_municipio":    req.Provider.IBGECode,
		},
		"tomador": taker,
		"servico": map[string]any{
			"discriminacao":      req.Service.Description,
			"item_lista_servico": req.Service.ServiceCode,
			"aliquota":           req.Service.ISSRate.InexactFloat64(),
			"valor_servicos":     req.Service.Amount.InexactFloat64(),
			"iss_retido":         req.Service.ISSWithheld,
			"codigo_municipio":   req.Provider.IBGECode,
		},
	}
}
