package models

// AttendanceSummary aggregates a class over an inclusive date range.
// Below75Count and ChronicAbsenceCount overlap on purpose: a chronically
// absent student is also below 75%.
type AttendanceSummary struct {
	Average              float64 `json:"average"`
	PerfectCount         int     `json:"perfectCount"`
	Below75Count         int     `json:"below75Count"`
	ChronicAbsenceCount  int     `json:"chronicAbsenceCount"`
	Days                 int     `json:"days"`
	TotalStudentsTracked int     `json:"totalStudentsTracked"`
}

// StudentAttendanceRow is a per-student breakdown line used by exports.
// Name is empty when the student reference no longer resolves against the
// roster.
type StudentAttendanceRow struct {
	StudentID string  `json:"studentId"`
	Roll      int     `json:"roll,omitempty"`
	Name      string  `json:"name,omitempty"`
	Present   int     `json:"present"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}
