package models

import "time"

// Student is a roster record. Identity within a class is the (className,
// roll) pair; students are created or updated in place, never deleted by
// normal flow.
type Student struct {
	ID          string    `db:"id" json:"id"`
	Roll        int       `db:"roll" json:"roll"`
	Name        string    `db:"name" json:"name"`
	ClassName   string    `db:"class_name" json:"className"`
	ParentPhone *string   `db:"parent_phone" json:"parentPhone,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentUpsert carries one element of a bulk roster write. Optional fields
// are pointers so an omitted field keeps the stored value on update.
type StudentUpsert struct {
	Roll        int     `json:"roll"`
	Name        string  `json:"name"`
	ClassName   string  `json:"className"`
	ParentPhone *string `json:"parentPhone"`
}

// BulkUpsertResult reports per-element outcomes of a roster batch.
type BulkUpsertResult struct {
	ModifiedCount int `json:"modifiedCount"`
	UpsertedCount int `json:"upsertedCount"`
}
