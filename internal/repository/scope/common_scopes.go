package scope

import "gorm.io/gorm"

// OrderByUpdatedDesc is the default library listing order (most recent first).
func OrderByUpdatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC").Order("id ASC")
}
