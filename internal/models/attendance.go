package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AttendanceEntry is one student's presence outcome inside a day's record.
// StudentID is a weak reference: the ledger never assumes the student still
// exists in the roster.
type AttendanceEntry struct {
	StudentID string `json:"studentId"`
	Present   bool   `json:"present"`
	Remarks   string `json:"remarks,omitempty"`
}

// AttendanceEntries is the ordered entry set of a record, stored as a
// single jsonb column so a resubmission replaces it wholesale.
type AttendanceEntries []AttendanceEntry

// Value marshals entries for jsonb storage.
func (e AttendanceEntries) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan unmarshals entries from jsonb storage.
func (e *AttendanceEntries) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	case nil:
		*e = nil
		return nil
	default:
		return fmt.Errorf("unsupported attendance entries source %T", src)
	}
}

// AttendanceRecord is the ledger row for one class on one calendar day.
// Date is kept in zero-padded ISO form ("YYYY-MM-DD") so text range
// predicates order correctly; at most one record exists per (date,
// className), enforced by a unique index.
type AttendanceRecord struct {
	ID        string            `db:"id" json:"id"`
	Date      string            `db:"date" json:"date"`
	ClassName string            `db:"class_name" json:"className"`
	Entries   AttendanceEntries `db:"entries" json:"entries"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}
