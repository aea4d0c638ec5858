package models

// AllModels returns every persisted model, in dependency order for AutoMigrate
func AllModels() []any {
	return []any{
		&PlanModel{},
		&TenantModel{},
		&UserModel{},
		&PasswordResetTokenModel{},
		&APIKeyModel{},
		&SubscriptionModel{},
		&LeadModel{},
		&CustomerModel{},
		&EquipmentModel{},
		&StockMovementModel{},
		&BookingModel{},
		&BookingItemModel{},
		&BookingSequenceModel{},
		&CategoryModel{},
		&TransactionModel{},
		&RecurringModel{},
		&InvoiceModel{},
		&ActivityLogModel{},
	}
}
