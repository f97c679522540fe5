package models

// AdminStats is the aggregate snapshot shown on the admin dashboard.
type AdminStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalDoctors        int64 `json:"totalDoctors"`
	TotalAppointments   int64 `json:"totalAppointments"`
	PendingAppointments int64 `json:"pendingAppointments"`
}
