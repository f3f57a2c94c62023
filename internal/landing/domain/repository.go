package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *RawIngestRecord) error

	// ListPending returns buffered rows with a non-null payload and an id
	// greater than afterID, ordered by id, up to limit. Snowflake ids are
	// time-ordered, so this walks the buffer oldest first.
	ListPending(ctx context.Context, db *gorm.DB, orgID snowflake.ID, afterID snowflake.ID, limit int) ([]RawIngestRecord, error)

	// DrainAll deletes every buffered row for the org, including rows whose
	// payload was null and rows whose bronze insert was skipped.
	DrainAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error

	Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
