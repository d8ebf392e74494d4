package models

import "time"

// AuditFields holds standard audit columns for persisted rows.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string    `db:"created_by"`
}
