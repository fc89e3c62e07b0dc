package specification

import "gorm.io/gorm"

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Predicate is implemented by equality specifications so backends without a
// query engine (the guest store) can evaluate them against a decoded row.
// Rows are keyed by column name.
type Predicate interface {
	Specification
	Matches(row map[string]interface{}) bool
}
