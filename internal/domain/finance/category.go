package finance

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
)

// TransactionType separates money in from money out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid returns true for INCOME and EXPENSE
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// RentalCategoryName is the income category used for booking receivables
const RentalCategoryName = "Locações"

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category groups transactions for reporting
type Category struct {
	shared.TenantAggregateRoot
	Name      string
	Type      TransactionType
	Color     string
	IsDefault bool
}

// NewCategory creates a category. Uniqueness of (tenant, name, type) is checked by the caller
func NewCategory(tenantID uuid.UUID, name string, kind TransactionType, color string) (*Category, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_TYPE", "Invalid transaction type %q", kind)
	}
	c := &Category{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID), Type: kind}
	if err := c.set(name, color); err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames or recolors the category
func (c *Category) Update(name, color string) error {
	if err := c.set(name, color); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Category) set(name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = defaultColor(c.Type)
	}
	if !colorRegex.MatchString(color) {
		return shared.NewDomainError("INVALID_COLOR", "Color must be a hex value like #22C55E")
	}
	c.Name = name
	c.Color = strings.ToUpper(color)
	return nil
}

func defaultColor(kind TransactionType) string {
	if kind == TransactionTypeExpense {
		return "#EF4444"
	}
	return "#22C55E"
}

var defaultCategoryNames = map[TransactionType][]string{
	TransactionTypeIncome:  {RentalCategoryName, "Frete", "Multas e Avarias", "Outras Receitas"},
	TransactionTypeExpense: {"Manutenção", "Compra de Equipamentos", "Salários", "Impostos", "Aluguel", "Outras Despesas"},
}

// DefaultCategories returns the categories seeded for a new tenant
func DefaultCategories(tenantID uuid.UUID) []*Category {
	out := make([]*Category, 0, 10)
	for _, kind := range []TransactionType{TransactionTypeIncome, TransactionTypeExpense} {
		for _, name := range defaultCategoryNames[kind] {
			c, _ := NewCategory(tenantID, name, kind, "")
			c.IsDefault = true
			out = append(out, c)
		}
	}
	return out
}
