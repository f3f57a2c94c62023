package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent inserts the transaction unless its (org, transaction
	// id) natural key already exists. Returns whether a row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, txn *SilverTransaction) (bool, error)

	// ExistingTransactionIDs reports which of the candidate ids are already
	// present in the silver store.
	ExistingTransactionIDs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []string) (map[string]struct{}, error)

	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]SilverTransaction, error)
	Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
