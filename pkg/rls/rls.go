package rls

import (
	"fmt"

	"gorm.io/gorm"
)

// WithTenant scopes the transaction to one organization. Postgres row level
// security policies read app.current_org_id, so this must run inside the
// transaction that executes the tenant queries.
func WithTenant(tx *gorm.DB, tenantID int64) error {
	return tx.Exec(
		"SET LOCAL app.current_org_id = ?",
		fmt.Sprintf("%d", tenantID),
	).Error
}
