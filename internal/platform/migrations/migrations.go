package migrations

import (
	"gorm.io/gorm"

	orderspg "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/persistence/postgres"
)

// Run applies the schema for the orders bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderspg.OrderRecord{},
		&orderspg.TimelineEventRecord{},
		&orderspg.IdempotencyKeyRecord{},
	)
}
