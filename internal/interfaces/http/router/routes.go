package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/locaflow/backend/internal/domain/identity"
	"github.com/locaflow/backend/internal/interfaces/http/handler"
	"github.com/locaflow/backend/internal/interfaces/http/middleware"
)

// Handlers holds every HTTP handler of the API. Nil handlers leave their
// routes unregistered
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	APIKeys    *handler.APIKeyHandler
	Equipment  *handler.EquipmentHandler
	Stock      *handler.StockHandler
	Customers  *handler.CustomerHandler
	Leads      *handler.LeadHandler
	Bookings   *handler.BookingHandler
	Finance    *handler.FinanceHandler
	Categories *handler.CategoryHandler
	Recurring  *handler.RecurringHandler
	Invoices   *handler.InvoiceHandler
	Billing    *handler.BillingHandler
	Activity   *handler.ActivityHandler
	Lookup     *handler.LookupHandler
	Reports    *handler.ReportHandler
	Admin      *handler.AdminHandler
	Health     *handler.HealthHandler
}

// Chains are the middleware stacks of the route areas
type Chains struct {
	// Public runs before the unauthenticated API routes
	Public []gin.HandlerFunc
	// AuthLimit is the stricter limit on /auth and /public
	AuthLimit gin.HandlerFunc
	// Protected authenticates and scopes the rest of the API
	Protected []gin.HandlerFunc
	// Admin authenticates the HTML pages from the session cookie
	Admin []gin.HandlerFunc
	// Metrics serves /metrics when set
	Metrics http.Handler
	// Swagger serves /swagger/*any when set
	Swagger []gin.HandlerFunc
}

// Mount registers every route on engine
func Mount(engine *gin.Engine, h Handlers, chains Chains) {
	NewRouter(engine, WithMiddleware(chains.Public...)).
		Register(PublicRoutes(h, chains.AuthLimit)...).
		Setup()

	NewRouter(engine, WithMiddleware(chains.Protected...)).
		Register(ProtectedRoutes(h)...).
		Setup()

	if h.Admin != nil {
		admin := engine.Group("/admin", chains.Admin...)
		admin.GET("", h.Admin.Dashboard)
		admin.GET("/bookings", h.Admin.Bookings)
		admin.GET("/equipment", h.Admin.Equipment)
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	if chains.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(chains.Metrics))
	}
	if len(chains.Swagger) > 0 {
		engine.GET("/swagger/*any", chains.Swagger...)
	}
}

// PublicRoutes are reachable without credentials
func PublicRoutes(h Handlers, authLimit gin.HandlerFunc) []RouteRegistrar {
	var out []RouteRegistrar
	limited := func(dg *DomainGroup) *DomainGroup {
		if authLimit != nil {
			dg.Use(authLimit)
		}
		return dg
	}

	if h.Auth != nil {
		out = append(out, limited(NewDomainGroup("auth", "/auth")).
			POST("/register", h.Auth.Register).
			POST("/login", h.Auth.Login).
			POST("/refresh", h.Auth.Refresh).
			POST("/forgot-password", h.Auth.ForgotPassword).
			POST("/reset-password", h.Auth.ResetPassword))
	}
	if h.Leads != nil {
		out = append(out, limited(NewDomainGroup("public", "/public")).
			POST("/leads", h.Leads.Capture))
	}
	if h.Billing != nil {
		out = append(out,
			NewDomainGroup("webhooks", "/webhooks").POST("/asaas", h.Billing.Webhook),
			NewDomainGroup("plans", "/plans").GET("", h.Billing.ListPlans),
		)
	}
	return out
}

// ProtectedRoutes need an authenticated caller. Each group guards one
// resource of the role table
func ProtectedRoutes(h Handlers) []RouteRegistrar {
	var out []RouteRegistrar
	session := middleware.RequireSession()

	if h.Auth != nil {
		out = append(out,
			NewDomainGroup("session", "/auth").Use(session).
				POST("/logout", h.Auth.Logout).
				GET("/me", h.Auth.Me).
				PUT("/password", h.Auth.ChangePassword),
			NewDomainGroup("tenant", "/tenant").Use(session).Guard(identity.ResourceSubscription).
				PUT("", h.Auth.UpdateTenant),
		)
	}
	if h.Users != nil {
		out = append(out, NewDomainGroup("users", "/users").Guard(identity.ResourceUser).
			GET("", h.Users.List).
			POST("", h.Users.Create).
			GET("/:id", h.Users.Get).
			PUT("/:id", h.Users.Update).
			DELETE("/:id", h.Users.Delete))
	}
	if h.APIKeys != nil {
		out = append(out, NewDomainGroup("api-keys", "/api-keys").Use(session).Guard(identity.ResourceAPIKey).
			GET("", h.APIKeys.List).
			POST("", h.APIKeys.Create).
			DELETE("/:id", h.APIKeys.Revoke))
	}
	if h.Equipment != nil {
		out = append(out, NewDomainGroup("equipment", "/equipment").Guard(identity.ResourceEquipment).
			GET("", h.Equipment.List).
			POST("", h.Equipment.Create).
			GET("/:id", h.Equipment.Get).
			PUT("/:id", h.Equipment.Update).
			DELETE("/:id", h.Equipment.Delete).
			GET("/:id/price", h.Equipment.Price))
	}
	if h.Stock != nil {
		out = append(out, NewDomainGroup("stock", "/stock").Guard(identity.ResourceStock).
			GET("/movements", h.Stock.ListMovements).
			POST("/movements", h.Stock.RegisterMovement).
			GET("/summary", h.Stock.Summary))
	}
	if h.Customers != nil {
		out = append(out, NewDomainGroup("customers", "/customers").Guard(identity.ResourceCustomer).
			GET("", h.Customers.List).
			POST("", h.Customers.Create).
			GET("/:id", h.Customers.Get).
			PUT("/:id", h.Customers.Update).
			DELETE("/:id", h.Customers.Delete))
	}
	if h.Leads != nil {
		out = append(out, NewDomainGroup("leads", "/leads").Guard(identity.ResourceLead).
			GET("", h.Leads.List).
			PUT("/:id/status", h.Leads.ChangeStatus).
			DELETE("/:id", h.Leads.Delete))
	}
	if h.Bookings != nil {
		b := h.Bookings
		out = append(out, NewDomainGroup("bookings", "/bookings").Guard(identity.ResourceBooking).
			GET("", b.List).
			POST("", b.Create).
			GET("/:id", b.Get).
			PUT("/:id", b.Update).
			DELETE("/:id", b.Delete).
			Handle(http.MethodPost, "/:id/confirm", identity.ActionUpdate, b.Confirm).
			Handle(http.MethodPost, "/:id/start", identity.ActionUpdate, b.Start).
			Handle(http.MethodPost, "/:id/complete", identity.ActionUpdate, b.Complete).
			Handle(http.MethodPost, "/:id/cancel", identity.ActionUpdate, b.Cancel).
			GET("/:id/contract", b.Contract))
	}
	if fin := financeRoutes(h); fin != nil {
		out = append(out, fin)
	}
	if h.Invoices != nil {
		inv := h.Invoices
		out = append(out, NewDomainGroup("invoices", "/invoices").Guard(identity.ResourceInvoice).
			GET("", inv.List).
			POST("", inv.Create).
			GET("/:id", inv.Get).
			DELETE("/:id", inv.Delete).
			Handle(http.MethodPost, "/:id/issue", identity.ActionUpdate, inv.Issue).
			Handle(http.MethodPost, "/:id/sync", identity.ActionUpdate, inv.Sync).
			Handle(http.MethodPost, "/:id/cancel", identity.ActionUpdate, inv.Cancel).
			GET("/:id/pdf", inv.PDF).
			GET("/:id/xml", inv.XML))
	}
	if h.Billing != nil {
		out = append(out, NewDomainGroup("subscription", "/subscription").Guard(identity.ResourceSubscription).
			GET("", h.Billing.Current).
			POST("", h.Billing.Subscribe).
			PUT("/plan", h.Billing.ChangePlan).
			DELETE("", h.Billing.Cancel))
	}
	if h.Activity != nil {
		out = append(out, NewDomainGroup("activity", "/activity-logs").Guard(identity.ResourceActivity).
			GET("", h.Activity.List))
	}
	if h.Lookup != nil {
		// Lookups help fill customer forms
		out = append(out, NewDomainGroup("lookup", "/lookup").Guard(identity.ResourceCustomer).
			GET("/cep/:cep", h.Lookup.CEP).
			GET("/cnpj/:cnpj", h.Lookup.CNPJ))
	}
	if h.Reports != nil {
		out = append(out,
			NewDomainGroup("dashboard", "/dashboard").Guard(identity.ResourceReport).
				GET("", h.Reports.Dashboard),
			NewDomainGroup("reports", "/reports").Guard(identity.ResourceReport).
				GET("/bookings", h.Reports.Bookings),
		)
	}
	return out
}

func financeRoutes(h Handlers) *DomainGroup {
	if h.Finance == nil && h.Categories == nil && h.Recurring == nil {
		return nil
	}
	fin := NewDomainGroup("finance", "/financial").Guard(identity.ResourceFinance)

	if t := h.Finance; t != nil {
		fin.GET("/summary", t.Summary)
		fin.Group("transactions", "/transactions").
			GET("", t.List).
			POST("", t.Create).
			GET("/:id", t.Get).
			PUT("/:id", t.Update).
			DELETE("/:id", t.Delete).
			Handle(http.MethodPost, "/:id/pay", identity.ActionUpdate, t.Pay).
			Handle(http.MethodPost, "/:id/cancel", identity.ActionUpdate, t.Cancel)
	}
	if c := h.Categories; c != nil {
		fin.Group("categories", "/categories").
			GET("", c.List).
			POST("", c.Create).
			PUT("/:id", c.Update).
			DELETE("/:id", c.Delete)
	}
	if r := h.Recurring; r != nil {
		fin.Group("recurring", "/recurring").
			GET("", r.List).
			POST("", r.Create).
			Handle(http.MethodPost, "/generate", identity.ActionCreate, r.Generate).
			GET("/:id", r.Get).
			PUT("/:id", r.Update).
			DELETE("/:id", r.Delete).
			Handle(http.MethodPost, "/:id/pause", identity.ActionUpdate, r.Pause).
			Handle(http.MethodPost, "/:id/resume", identity.ActionUpdate, r.Resume).
			Handle(http.MethodPost, "/:id/complete", identity.ActionUpdate, r.Complete)
	}
	return fin
}
