package services

import (
	"context"

	"gorm.io/gorm"
)

// inTransaction reports whether db is already bound to an open transaction.
func inTransaction(db *gorm.DB) bool {
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}

// withTx runs fn in a transaction. When db already is one, fn joins it and
// the caller keeps control of commit and rollback.
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	db = db.WithContext(ctx)
	if inTransaction(db) {
		return fn(db)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit().Error
}
