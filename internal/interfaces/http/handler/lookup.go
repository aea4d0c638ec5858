package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/domain/shared/valueobject"
	"github.com/locaflow/backend/internal/infrastructure/integration"
)

// Lookuper resolves postal codes and company registrations
type Lookuper interface {
	CEP(ctx context.Context, cep string) (valueobject.Address, error)
	CNPJ(ctx context.Context, cnpj string) (*integration.Company, error)
}

// LookupHandler serves CEP and CNPJ lookups for the forms
type LookupHandler struct {
	BaseHandler
	lookup Lookuper
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookup Lookuper) *LookupHandler {
	return &LookupHandler{lookup: lookup}
}

// CEP godoc
// @ID           lookupCEP
// @Summary      Look up a CEP
// @Tags         lookup
// @Produce      json
// @Param        cep path string true "CEP, with or without mask" example(01310100)
// @Success      200 {object} APIResponse[valueobject.Address]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /lookup/cep/{cep} [get]
func (h *LookupHandler) CEP(c *gin.Context) {
	cep := valueobject.OnlyDigits(c.Param("cep"))
	if !valueobject.IsValidCEP(cep) {
		h.BadRequest(c, "Invalid CEP")
		return
	}
	addr, err := h.lookup.CEP(c.Request.Context(), cep)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

// CNPJ godoc
// @ID           lookupCNPJ
// @Summary      Look up a CNPJ
// @Tags         lookup
// @Produce      json
// @Param        cnpj path string true "CNPJ, with or without mask"
// @Success      200 {object} APIResponse[integration.Company]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     CookieAuth
// @Router       /lookup/cnpj/{cnpj} [get]
func (h *LookupHandler) CNPJ(c *gin.Context) {
	cnpj := valueobject.OnlyDigits(c.Param("cnpj"))
	if !valueobject.IsValidCNPJ(cnpj) {
		h.BadRequest(c, "Invalid CNPJ")
		return
	}
	company, err := h.lookup.CNPJ(c.Request.Context(), cnpj)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}
