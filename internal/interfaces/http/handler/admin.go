package handler

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	bookingapp "github.com/locaflow/backend/internal/application/booking"
	inventoryapp "github.com/locaflow/backend/internal/application/inventory"
	reportapp "github.com/locaflow/backend/internal/application/report"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

const adminPageSize = 50

var adminPages = []string{"dashboard", "bookings", "equipment", "unauthorized"}

var adminFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("02/01/2006") },
}

// AdminHandler renders the server side admin pages
type AdminHandler struct {
	BaseHandler
	pages     map[string]*template.Template
	reports   *reportapp.Service
	bookings  *bookingapp.Service
	equipment *inventoryapp.EquipmentService
}

// adminView is the data of every admin page
type adminView struct {
	Title      string
	Page       string
	User       string
	Message    string
	Data       any
	Total      int64
	PageNumber int
	TotalPages int
	NextPage   int
}

// NewAdminHandler parses the embedded page templates
func NewAdminHandler(reports *reportapp.Service, bookings *bookingapp.Service, equipment *inventoryapp.EquipmentService) (*AdminHandler, error) {
	pages := make(map[string]*template.Template, len(adminPages))
	for _, name := range adminPages {
		t, err := template.New(name).Funcs(adminFuncs).ParseFS(adminFS, "templates/admin/layout.html", "templates/admin/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse admin page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &AdminHandler{pages: pages, reports: reports, bookings: bookings, equipment: equipment}, nil
}

// SignInRequired renders the sign-in notice. It is the OnError hook of the
// admin authentication middleware
func (h *AdminHandler) SignInRequired(c *gin.Context, _, message string) {
	h.render(c, http.StatusUnauthorized, "unauthorized", adminView{Title: "Acesso restrito", Message: message})
}

// Dashboard renders GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	d, err := h.reports.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard", adminView{Title: "Painel", Page: "dashboard", User: userLabel(c), Data: d})
}

// Bookings renders GET /admin/bookings
func (h *AdminHandler) Bookings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	page := pageParam(c)
	result, err := h.bookings.List(c.Request.Context(), tenantID, bookingapp.BookingListFilter{Page: page, PageSize: adminPageSize})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "bookings", pagedView("Locações", "bookings", userLabel(c), result.Items, result.Total, result.Page, result.TotalPages))
}

// Equipment renders GET /admin/equipment
func (h *AdminHandler) Equipment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	page := pageParam(c)
	result, err := h.equipment.List(c.Request.Context(), tenantID, inventoryapp.EquipmentListFilter{Page: page, PageSize: adminPageSize})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "equipment", pagedView("Equipamentos", "equipment", userLabel(c), result.Items, result.Total, result.Page, result.TotalPages))
}

func pagedView(title, page, user string, data any, total int64, current, pages int) adminView {
	v := adminView{Title: title, Page: page, User: user, Data: data, Total: total, PageNumber: current, TotalPages: pages}
	if current < pages {
		v.NextPage = current + 1
	}
	if v.TotalPages == 0 {
		v.TotalPages = 1
	}
	return v
}

func (h *AdminHandler) render(c *gin.Context, status int, page string, view adminView) {
	c.Render(status, render.HTML{Template: h.pages[page], Name: "layout", Data: view})
}

func (h *AdminHandler) fail(c *gin.Context, err error) {
	logger.FromGin(c).Error("Admin page failed", zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Erro ao carregar a página")
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func userLabel(c *gin.Context) string {
	if p, ok := caller(c); ok {
		return p.Email
	}
	return ""
}
