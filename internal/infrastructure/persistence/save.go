package persistence

import (
	"errors"

	"github.com/locaflow/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// saveAggregate inserts a new aggregate or overwrites a loaded one
func saveAggregate(db *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	var err error
	if root.IsNew() {
		err = db.Create(model).Error
	} else {
		err = db.Save(model).Error
	}
	if err != nil {
		return writeError(err)
	}
	root.MarkPersisted()
	return nil
}

// saveWithLock updates a loaded aggregate only while the stored version is
// still the one it was loaded with
func saveWithLock(db *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	if root.IsNew() {
		return saveAggregate(db, model, root)
	}
	result := db.Model(model).
		Where("version = ?", root.PersistedVersion()).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return writeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	root.MarkPersisted()
	return nil
}

// writeError maps driver constraint errors to domain errors
func writeError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// deleteResult turns a zero-row delete into NOT_FOUND
func deleteResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
