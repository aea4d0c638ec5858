package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/finance"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/locaflow/backend/internal/infrastructure/persistence/models"
	"github.com/locaflow/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var openTransactionStatuses = []finance.TransactionStatus{finance.TransactionStatusPending, finance.TransactionStatusOverdue}

// GormCategoryRepository implements finance.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Category, error) {
	var model models.CategoryModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a category by its (name, type) key
func (r *GormCategoryRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string, kind finance.TransactionType) (*finance.Category, error) {
	var model models.CategoryModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		First(&model, "name = ? AND type = ?", name, kind).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists categories, optionally of one type
func (r *GormCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, kind finance.TransactionType) ([]finance.Category, error) {
	query := conn(ctx, r.db).Scopes(tenant.Scope(tenantID))
	if kind != "" {
		query = query.Where("type = ?", kind)
	}
	var categoryModels []models.CategoryModel
	if err := query.Order("type ASC, name ASC").Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]finance.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = *categoryModels[i].ToDomain()
	}
	return categories, nil
}

// ExistsByNameAndType checks the (tenant, name, type) key, ignoring excludeID
func (r *GormCategoryRepository) ExistsByNameAndType(ctx context.Context, tenantID uuid.UUID, name string, kind finance.TransactionType, excludeID *uuid.UUID) (bool, error) {
	query := conn(ctx, r.db).Model(&models.CategoryModel{}).Scopes(tenant.Scope(tenantID)).
		Where("name = ? AND type = ?", name, kind)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsInUse reports whether a transaction or recurring series references the category
func (r *GormCategoryRepository) IsInUse(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := conn(ctx, r.db).Model(&models.RecurringModel{}).Scopes(tenant.Scope(tenantID)).
		Where("category_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, c *finance.Category) error {
	return saveAggregate(conn(ctx, r.db), models.CategoryModelFromDomain(c), &c.BaseAggregateRoot)
}

// SaveBatch inserts the default categories of a new tenant
func (r *GormCategoryRepository) SaveBatch(ctx context.Context, categories []*finance.Category) error {
	if len(categories) == 0 {
		return nil
	}
	rows := make([]*models.CategoryModel, len(categories))
	for i, c := range categories {
		rows[i] = models.CategoryModelFromDomain(c)
	}
	if err := conn(ctx, r.db).Create(rows).Error; err != nil {
		return writeError(err)
	}
	for _, c := range categories {
		c.MarkPersisted()
	}
	return nil
}

// DeleteForTenant deletes a category within a tenant
func (r *GormCategoryRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.CategoryModel{}, "id = ?", id))
}

// GormTransactionRepository implements finance.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByIDForTenant finds a transaction by ID within a tenant
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Transaction, error) {
	var model models.TransactionModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists transactions matching the filter
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Transaction, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, TransactionSortFields, "due_date")

	var rows []models.TransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

// CountForTenant counts transactions matching the filter
func (r *GormTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOpenByBooking returns the PENDING and OVERDUE transactions of a booking
func (r *GormTransactionRepository) FindOpenByBooking(ctx context.Context, tenantID, bookingID uuid.UUID) ([]finance.Transaction, error) {
	var rows []models.TransactionModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("booking_id = ? AND status IN ?", bookingID, openTransactionStatuses).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTransactions(rows), nil
}

// MarkOverdue flips PENDING rows due before day to OVERDUE
func (r *GormTransactionRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	result := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Where("status = ? AND due_date < ?", finance.TransactionStatusPending, day).
		Updates(map[string]any{
			"status":     finance.TransactionStatusOverdue,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

type amountRow struct {
	Type   finance.TransactionType
	Status finance.TransactionStatus
	Count  int64
	Total  decimal.Decimal
}

// Summarize computes the cash view of [from, to). Paid amounts are windowed on
// paid_at while pending and overdue amounts are windowed on due_date
func (r *GormTransactionRepository) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*finance.Summary, error) {
	summary := &finance.Summary{ByCategory: []finance.CategoryTotal{}}

	var paid []amountRow
	if err := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Select("type, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", finance.TransactionStatusPaid, from, to).
		Group("type, status").
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	for _, row := range paid {
		if row.Type == finance.TransactionTypeIncome {
			summary.PaidIncome = summary.PaidIncome.Add(row.Total)
		} else {
			summary.PaidExpense = summary.PaidExpense.Add(row.Total)
		}
	}
	summary.Balance = summary.PaidIncome.Sub(summary.PaidExpense)

	var open []amountRow
	if err := conn(ctx, r.db).Model(&models.TransactionModel{}).Scopes(tenant.Scope(tenantID)).
		Select("type, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("status IN ? AND due_date >= ? AND due_date < ?", openTransactionStatuses, from, to).
		Group("type, status").
		Scan(&open).Error; err != nil {
		return nil, err
	}
	for _, row := range open {
		if row.Type == finance.TransactionTypeIncome {
			summary.PendingReceivable = summary.PendingReceivable.Add(row.Total)
		} else {
			summary.PendingPayable = summary.PendingPayable.Add(row.Total)
		}
		if row.Status == finance.TransactionStatusOverdue {
			summary.OverdueCount += row.Count
			summary.OverdueAmount = summary.OverdueAmount.Add(row.Total)
		}
	}

	var byCategory []struct {
		CategoryID *uuid.UUID
		Name       *string
		Type       finance.TransactionType
		Total      decimal.Decimal
	}
	if err := conn(ctx, r.db).Table("financial_transactions AS t").
		Select("t.category_id, c.name, t.type, COALESCE(SUM(t.amount), 0) AS total").
		Joins("LEFT JOIN transaction_categories c ON c.id = t.category_id").
		Where("t.tenant_id = ? AND t.status = ? AND t.paid_at >= ? AND t.paid_at < ?",
			tenantID, finance.TransactionStatusPaid, from, to).
		Group("t.category_id, c.name, t.type").
		Order("total DESC").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, row := range byCategory {
		name := "Sem categoria"
		if row.Name != nil {
			name = *row.Name
		}
		summary.ByCategory = append(summary.ByCategory, finance.CategoryTotal{
			CategoryID: row.CategoryID,
			Name:       name,
			Type:       row.Type,
			Total:      row.Total,
		})
	}
	return summary, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *finance.Transaction) error {
	return saveAggregate(conn(ctx, r.db), models.TransactionModelFromDomain(t), &t.BaseAggregateRoot)
}

// DeleteForTenant deletes a transaction within a tenant
func (r *GormTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.TransactionModel{}, "id = ?", id))
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description "+likeOp(query)+" ?", searchPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "booking_id":
			query = query.Where("booking_id = ?", value)
		case "recurring_transaction_id":
			query = query.Where("recurring_transaction_id = ?", value)
		}
	}
	if filter.From != nil {
		query = query.Where("due_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("due_date < ?", *filter.To)
	}
	return query
}

func toTransactions(rows []models.TransactionModel) []finance.Transaction {
	out := make([]finance.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormRecurringRepository implements finance.RecurringRepository using GORM
type GormRecurringRepository struct {
	db *gorm.DB
}

// NewGormRecurringRepository creates a new GormRecurringRepository
func NewGormRecurringRepository(db *gorm.DB) *GormRecurringRepository {
	return &GormRecurringRepository{db: db}
}

// FindByIDForTenant finds a series by ID within a tenant
func (r *GormRecurringRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.RecurringTransaction, error) {
	var model models.RecurringModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists series matching the filter
func (r *GormRecurringRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.RecurringTransaction, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.RecurringModel{}).Scopes(tenant.Scope(tenantID)), filter)
	query = applyPage(query, filter, RecurringSortFields, "next_due_date")

	var rows []models.RecurringModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecurring(rows), nil
}

// CountForTenant counts series matching the filter
func (r *GormRecurringRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.RecurringModel{}).Scopes(tenant.Scope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDue returns ACTIVE series with next_due_date <= now
func (r *GormRecurringRepository) FindDue(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]finance.RecurringTransaction, error) {
	var rows []models.RecurringModel
	if err := conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).
		Where("status = ? AND next_due_date <= ?", finance.RecurringStatusActive, now).
		Order("next_due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecurring(rows), nil
}

// Save creates or updates a series
func (r *GormRecurringRepository) Save(ctx context.Context, rt *finance.RecurringTransaction) error {
	return saveAggregate(conn(ctx, r.db), models.RecurringModelFromDomain(rt), &rt.BaseAggregateRoot)
}

// DeleteForTenant deletes a series within a tenant
func (r *GormRecurringRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteResult(conn(ctx, r.db).Scopes(tenant.Scope(tenantID)).Delete(&models.RecurringModel{}, "id = ?", id))
}

func (r *GormRecurringRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description "+likeOp(query)+" ?", searchPattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "frequency":
			query = query.Where("frequency = ?", value)
		}
	}
	return query
}

func toRecurring(rows []models.RecurringModel) []finance.RecurringTransaction {
	out := make([]finance.RecurringTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ finance.CategoryRepository    = (*GormCategoryRepository)(nil)
	_ finance.TransactionRepository = (*GormTransactionRepository)(nil)
	_ finance.RecurringRepository   = (*GormRecurringRepository)(nil)
)
