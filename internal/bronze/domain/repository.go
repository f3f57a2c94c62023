package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent inserts the record unless its (org, record id) natural
	// key already exists. Returns whether a row was actually written; a
	// duplicate key is not an error.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, record *BronzeRecord) (bool, error)

	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]BronzeRecord, error)

	// ListAfter walks bronze rows with a non-null payload in id order,
	// returning rows with id greater than afterID, up to limit.
	ListAfter(ctx context.Context, db *gorm.DB, orgID snowflake.ID, afterID snowflake.ID, limit int) ([]BronzeRecord, error)
	Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
