package services

import (
	"context"

	"medwaste/pkg/models"
)

// BookingView is a booking plus its display-only status bucket
type BookingView struct {
	models.BookingRecord
	StatusClass string `json:"statusClass"`
}

// Dashboard is what a vendor sees: their identity and every booking
type Dashboard struct {
	Vendor   models.VendorIdentity `json:"vendor"`
	Total    int                   `json:"total"`
	Bookings []BookingView         `json:"bookings"`
}

// DashboardService is the read-only vendor projection of the booking list
type DashboardService interface {
	Dashboard(ctx context.Context, sessionID string) (*Dashboard, error)
}

type dashboardServiceImpl struct {
	identities IdentityService
	bookings   BookingService
}

func NewDashboardService(identities IdentityService, bookings BookingService) DashboardService {
	return &dashboardServiceImpl{
		identities: identities,
		bookings:   bookings,
	}
}

// Dashboard reads the list once. It never changes a booking's status.
func (s *dashboardServiceImpl) Dashboard(ctx context.Context, sessionID string) (*Dashboard, error) {
	vendor, err := s.identities.Vendor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	records, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]BookingView, 0, len(records))
	for _, r := range records {
		views = append(views, BookingView{BookingRecord: r, StatusClass: models.StatusClass(r.Status)})
	}

	return &Dashboard{
		Vendor:   *vendor,
		Total:    len(views),
		Bookings: views,
	}, nil
}
