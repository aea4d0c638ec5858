package identity

import (
	"sort"
	"strings"
)

// Role is a fixed user role. Permissions come from a static table, not the database
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleOperator   Role = "OPERATOR"
	RoleFinancial  Role = "FINANCIAL"
	RoleViewer     Role = "VIEWER"
)

// Resources guarded by permissions
const (
	ResourceEquipment    = "equipment"
	ResourceCustomer     = "customer"
	ResourceBooking      = "booking"
	ResourceStock        = "stock"
	ResourceFinance      = "finance"
	ResourceInvoice      = "invoice"
	ResourceSubscription = "subscription"
	ResourceUser         = "user"
	ResourceAPIKey       = "apikey"
	ResourceActivity     = "activity"
	ResourceLead         = "lead"
	ResourceReport       = "report"
)

// Actions on a resource
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const wildcard = "*"

var tenantResources = []string{
	ResourceEquipment, ResourceCustomer, ResourceBooking, ResourceStock, ResourceFinance,
	ResourceInvoice, ResourceSubscription, ResourceUser, ResourceAPIKey, ResourceActivity, ResourceReport,
}

func all(resource string) string { return resource + ":" + wildcard }

func perms(resource string, actions ...string) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, resource+":"+a)
	}
	return out
}

var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role][]string {
	admin := make([]string, 0, len(tenantResources))
	viewer := make([]string, 0, len(tenantResources))
	for _, r := range tenantResources {
		admin = append(admin, all(r))
		viewer = append(viewer, r+":"+ActionRead)
	}

	manager := []string{all(ResourceEquipment), all(ResourceCustomer), all(ResourceBooking), all(ResourceStock)}
	manager = append(manager, perms(ResourceFinance, ActionRead)...)
	manager = append(manager, perms(ResourceInvoice, ActionRead)...)
	manager = append(manager, perms(ResourceReport, ActionRead)...)
	manager = append(manager, perms(ResourceActivity, ActionRead, ActionCreate)...)

	operator := perms(ResourceEquipment, ActionRead)
	operator = append(operator, perms(ResourceCustomer, ActionRead, ActionCreate, ActionUpdate)...)
	operator = append(operator, perms(ResourceBooking, ActionRead, ActionCreate, ActionUpdate)...)
	operator = append(operator, perms(ResourceStock, ActionRead, ActionCreate)...)

	financial := []string{all(ResourceFinance), all(ResourceInvoice)}
	financial = append(financial, perms(ResourceCustomer, ActionRead)...)
	financial = append(financial, perms(ResourceBooking, ActionRead)...)
	financial = append(financial, perms(ResourceReport, ActionRead)...)
	financial = append(financial, perms(ResourceSubscription, ActionRead)...)

	return map[Role][]string{
		RoleSuperAdmin: {wildcard + ":" + wildcard},
		RoleAdmin:      admin,
		RoleManager:    manager,
		RoleOperator:   operator,
		RoleFinancial:  financial,
		RoleViewer:     viewer,
	}
}

// ParseRole validates a role name
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := rolePermissions[r]
	return r, ok
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the permission codes granted to the role, sorted
func (r Role) Permissions() []string {
	src := rolePermissions[r]
	out := make([]string, len(src))
	copy(out, src)
	sort.Strings(out)
	return out
}

// Can reports whether the role grants action on resource
func (r Role) Can(resource, action string) bool {
	return PermissionsAllow(rolePermissions[r], resource, action)
}

// AssignableBy reports whether a user holding by may hand out role r
func (r Role) AssignableBy(by Role) bool {
	if r == RoleSuperAdmin {
		return by == RoleSuperAdmin
	}
	return by == RoleSuperAdmin || by == RoleAdmin
}

// PermissionsAllow matches resource:action against a list that may contain wildcards
func PermissionsAllow(granted []string, resource, action string) bool {
	for _, p := range granted {
		res, act, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		if (res == wildcard || res == resource) && (act == wildcard || act == action) {
			return true
		}
	}
	return false
}
