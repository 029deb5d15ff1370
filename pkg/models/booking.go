package models

import "strings"

const (
	StatusPending    = "Pending"
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
)

// BookingRequest is the raw input of the booking form
type BookingRequest struct {
	WasteType string `json:"wasteType" form:"wasteType" validate:"required,wastecategory"`
	Weight    string `json:"weight" form:"weight" validate:"required,posweight"`
}

// BookingRecord is one waste pickup request as stored in the booking list.
// The hospital fields are copied from the identity at creation time.
type BookingRecord struct {
	ID            string `json:"id"`
	HospitalName  string `json:"hospitalName"`
	UserName      string `json:"userName"`
	ContactNumber string `json:"contactNumber"`
	Location      string `json:"location"`
	WasteType     string `json:"wasteType"`
	Weight        string `json:"weight"`
	BookedAt      string `json:"bookedAt"`
	Status        string `json:"status"`
}

// StatusClass buckets a status string for display only.
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case "pending":
		return "pending"
	case "completed":
		return "completed"
	case "in progress":
		return "in-progress"
	default:
		return "neutral"
	}
}
