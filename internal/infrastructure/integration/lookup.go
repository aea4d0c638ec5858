package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/cache"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultViaCEPURL    = "https://viacep.com.br/ws"
	defaultBrasilAPIURL = "https://brasilapi.com.br/api"
)

var (
	ErrCEPNotFound  = shared.NewDomainError(shared.CodeNotFound, "CEP not found")
	ErrCNPJNotFound = shared.NewDomainError(shared.CodeNotFound, "CNPJ not found")
	ErrInvalidCEP   = shared.NewDomainError(shared.CodeInvalidInput, "CEP must have 8 digits")
	ErrInvalidCNPJ  = shared.NewDomainError(shared.CodeInvalidInput, "invalid CNPJ")
)

// Company is the public registry data for a CNPJ
type Company struct {
	CNPJ        string              `json:"cnpj"`
	LegalName   string              `json:"legal_name"`
	TradeName   string              `json:"trade_name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Situation   string              `json:"situation"`
	Address     valueobject.Address `json:"address"`
	MainCNAE    string              `json:"main_cnae"`
	OpeningDate string              `json:"opening_date"`
}

// ViaCEPClient resolves postal codes
type ViaCEPClient struct {
	rest *restClient
}

// NewViaCEPClient creates a CEP client
func NewViaCEPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ViaCEPClient {
	if baseURL == "" {
		baseURL = defaultViaCEPURL
	}
	return &ViaCEPClient{rest: newRestClient("viacep", baseURL, timeout, logger)}
}

// LookupCEP returns the normalized address of cep
func (c *ViaCEPClient) LookupCEP(ctx context.Context, cep string) (valueobject.Address, error) {
	digits := valueobject.OnlyDigits(cep)
	if !valueobject.IsValidCEP(digits) {
		return valueobject.Address{}, ErrInvalidCEP
	}
	body, _, err := c.rest.doJSON(ctx, http.MethodGet, "/"+digits+"/json/", nil)
	if err != nil {
		if HasStatus(err, http.StatusBadRequest) {
			return valueobject.Address{}, ErrInvalidCEP
		}
		return valueobject.Address{}, err
	}
	// ViaCEP answers 200 {"erro": true} for unknown codes, sometimes as a string
	if e := body.Get("erro"); e.Exists() && (e.Bool() || e.String() == "true") {
		return valueobject.Address{}, ErrCEPNotFound
	}
	return valueobject.Address{
		ZipCode:    digits,
		Street:     body.Get("logradouro").String(),
		Complement: body.Get("complemento").String(),
		District:   body.Get("bairro").String(),
		City:       body.Get("localidade").String(),
		State:      body.Get("uf").String(),
		IBGECode:   body.Get("ibge").String(),
	}, nil
}

// BrasilAPIClient resolves CNPJs
type BrasilAPIClient struct {
	rest *restClient
}

// NewBrasilAPIClient creates a CNPJ client
func NewBrasilAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BrasilAPIClient {
	if baseURL == "" {
		baseURL = defaultBrasilAPIURL
	}
	rest := newRestClient("brasilapi", baseURL, timeout, logger)
	rest.parseError = func(body gjson.Result) (string, string) {
		return body.Get("type").String(), body.Get("message").String()
	}
	return &BrasilAPIClient{rest: rest}
}

// LookupCNPJ returns the registry data of cnpj
func (c *BrasilAPIClient) LookupCNPJ(ctx context.Context, cnpj string) (*Company, error) {
	digits := valueobject.OnlyDigits(cnpj)
	if !valueobject.IsValidCNPJ(digits) {
		return nil, ErrInvalidCNPJ
	}
	body, _, err := c.rest.doJSON(ctx, http.MethodGet, "/cnpj/v1/"+url.PathEscape(digits), nil)
	if err != nil {
		if HasStatus(err, http.StatusNotFound) {
			return nil, ErrCNPJNotFound
		}
		return nil, err
	}
	return &Company{
		CNPJ:      digits,
		LegalName: body.Get("razao_social").String(),
		TradeName: body.Get("nome_fantasia").String(),
		Email:     body.Get("email").String(),
		Phone:     valueobject.OnlyDigits(body.Get("ddd_telefone_1").String()),
		Situation: body.Get("descricao_situacao_cadastral").String(),
		Address: valueobject.Address{
			ZipCode:    valueobject.OnlyDigits(body.Get("cep").String()),
			Street:     body.Get("logradouro").String(),
			Number:     body.Get("numero").String(),
			Complement: body.Get("complemento").String(),
			District:   body.Get("bairro").String(),
			City:       body.Get("municipio").String(),
			State:      body.Get("uf").String(),
			IBGECode:   body.Get("codigo_municipio_ibge").String(),
		},
		MainCNAE:    body.Get("cnae_fiscal").String(),
		OpeningDate: body.Get("data_inicio_atividade").String(),
	}, nil
}

// Lookup serves CEP and CNPJ lookups through the lookup cache
type Lookup struct {
	cep    *ViaCEPClient
	cnpj   *BrasilAPIClient
	cache  cache.LookupCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewLookup wires both lookup clients behind c
func NewLookup(cfg config.LookupConfig, c cache.LookupCache, logger *zap.Logger) *Lookup {
	return &Lookup{
		cep:    NewViaCEPClient(cfg.ViaCEPURL, cfg.Timeout, logger),
		cnpj:   NewBrasilAPIClient(cfg.BrasilAPIURL, cfg.Timeout, logger),
		cache:  c,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}
}

// CEP returns the cached or fetched address of cep
func (l *Lookup) CEP(ctx context.Context, cep string) (valueobject.Address, error) {
	digits := valueobject.OnlyDigits(cep)
	return cache.Remember(ctx, l.cache, l.logger, fmt.Sprintf("cep:%s", digits), l.ttl, func(ctx context.Context) (valueobject.Address, error) {
		return l.cep.LookupCEP(ctx, digits)
	})
}

// CNPJ returns the cached or fetched company of cnpj
func (l *Lookup) CNPJ(ctx context.Context, cnpj string) (*Company, error) {
	digits := valueobject.OnlyDigits(cnpj)
	return cache.Remember(ctx, l.cache, l.logger, fmt.Sprintf("cnpj:%s", digits), l.ttl, func(ctx context.Context) (*Company, error) {
		return l.cnpj.LookupCNPJ(ctx, digits)
	})
}
