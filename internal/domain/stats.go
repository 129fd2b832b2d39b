package domain

// Stats summarizes the complaint backlog.
type Stats struct {
	ActiveCases      int     `json:"activeCases"`
	AvgResponseHours float64 `json:"avgResponseHours"`
	ResolutionRate   float64 `json:"resolutionRate"`
	OverdueCases     int     `json:"overdueCases"`
}
