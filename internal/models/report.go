package models

// ReportRow is one object in the precomputed suggestions report.
type ReportRow struct {
	Name          string
	Type          string
	Constellation string
	Rise          int     // rebased hour the window opens, 0-23
	Set           int     // rebased hour the window closes, 0-23
	Duration      float64 // hours, computed before rebasing
	Magnitude     float64
}
