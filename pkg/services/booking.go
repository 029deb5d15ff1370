package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medwaste/pkg/metrics"
	"medwaste/pkg/models"
	"medwaste/pkg/storage"
	"medwaste/pkg/validation"
)

// BookedAtLayout renders the booking time the way it is shown to vendors.
const BookedAtLayout = "1/2/2006, 3:04:05 PM"

// BookingService defines the interface for creating and listing pickup bookings
type BookingService interface {
	Categories() []models.WasteCategory
	// Book appends a pending booking for the session's hospital. It returns
	// a *SessionRequiredError when no hospital identity exists and a
	// validation.FieldErrors when the request is invalid.
	Book(ctx context.Context, sessionID string, req models.BookingRequest) (*models.BookingRecord, error)
	// List returns every booking in insertion order.
	List(ctx context.Context) ([]models.BookingRecord, error)
}

type bookingServiceImpl struct {
	store      storage.Store
	identities IdentityService
	validator  *validation.Validator
	ids        *IDGenerator
	now        func() time.Time
	location   *time.Location
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(
	store storage.Store,
	identities IdentityService,
	validator *validation.Validator,
	location *time.Location,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) BookingService {
	return newBookingService(store, identities, validator, location, time.Now, logger, metrics)
}

func newBookingService(
	store storage.Store,
	identities IdentityService,
	validator *validation.Validator,
	location *time.Location,
	now func() time.Time,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) *bookingServiceImpl {
	if location == nil {
		location = time.Local
	}
	return &bookingServiceImpl{
		store:      store,
		identities: identities,
		validator:  validator,
		ids:        NewIDGenerator(now),
		now:        now,
		location:   location,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *bookingServiceImpl) Categories() []models.WasteCategory {
	return models.WasteCategories()
}

func (s *bookingServiceImpl) Book(ctx context.Context, sessionID string, req models.BookingRequest) (*models.BookingRecord, error) {
	hospital, err := s.identities.Hospital(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.Booking(req); errs != nil {
		s.metrics.ValidationFailed("booking", errs)
		return nil, errs
	}
	category, _ := models.LookupWasteCategory(req.WasteType)

	record := models.BookingRecord{
		ID:            s.ids.Next(),
		HospitalName:  hospital.HospitalName,
		UserName:      hospital.UserName,
		ContactNumber: hospital.ContactNumber,
		Location:      hospital.Location,
		WasteType:     category.Name,
		Weight:        req.Weight,
		BookedAt:      s.now().In(s.location).Format(BookedAtLayout),
		Status:        models.StatusPending,
	}

	err = s.store.Update(ctx, storage.KeyBookings, func(current []byte, found bool) ([]byte, error) {
		var bookings []models.BookingRecord
		if found {
			if err := json.Unmarshal(current, &bookings); err != nil {
				return nil, fmt.Errorf("error decoding bookings: %w", err)
			}
		}
		bookings = append(bookings, record)
		return json.Marshal(bookings)
	})
	if err != nil {
		return nil, fmt.Errorf("error saving booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues(category.ID).Inc()
	s.logger.Info("booking created",
		zap.String("id", record.ID),
		zap.String("hospital", record.HospitalName),
		zap.String("wasteType", record.WasteType),
		zap.String("weight", record.Weight),
	)
	return &record, nil
}

func (s *bookingServiceImpl) List(ctx context.Context) ([]models.BookingRecord, error) {
	var bookings []models.BookingRecord
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyBookings, &bookings); err != nil {
		return nil, fmt.Errorf("error loading bookings: %w", err)
	}
	if bookings == nil {
		bookings = []models.BookingRecord{}
	}
	return bookings, nil
}
