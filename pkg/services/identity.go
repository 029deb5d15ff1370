package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medwaste/pkg/metrics"
	"medwaste/pkg/models"
	"medwaste/pkg/storage"
	"medwaste/pkg/utils"
	"medwaste/pkg/validation"
)

// IdentityService captures and reads the hospital and vendor identity of a session
type IdentityService interface {
	// SubmitHospital validates h and, when valid, replaces the session's
	// hospital identity. A validation.FieldErrors is returned otherwise.
	SubmitHospital(ctx context.Context, sessionID string, h models.HospitalIdentity) error
	SubmitVendor(ctx context.Context, sessionID string, v models.VendorIdentity) error
	// Hospital returns a *SessionRequiredError when no identity was submitted.
	Hospital(ctx context.Context, sessionID string) (*models.HospitalIdentity, error)
	Vendor(ctx context.Context, sessionID string) (*models.VendorIdentity, error)
}

type identityServiceImpl struct {
	store      storage.Store
	validator  *validation.Validator
	sessionTTL time.Duration
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	store storage.Store,
	validator *validation.Validator,
	sessionTTL time.Duration,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) IdentityService {
	return &identityServiceImpl{
		store:      store,
		validator:  validator,
		sessionTTL: sessionTTL,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *identityServiceImpl) session(sessionID string) storage.Store {
	return storage.Scoped(s.store, storage.SessionPrefix(sessionID), s.sessionTTL)
}

func (s *identityServiceImpl) SubmitHospital(ctx context.Context, sessionID string, h models.HospitalIdentity) error {
	if errs := s.validator.Hospital(h); errs != nil {
		s.metrics.IdentitySubmissions.WithLabelValues("hospital", "invalid").Inc()
		s.metrics.ValidationFailed("hospital", errs)
		return errs
	}

	if err := storage.PutJSON(ctx, s.session(sessionID), storage.KeyHospital, h); err != nil {
		s.metrics.IdentitySubmissions.WithLabelValues("hospital", "error").Inc()
		return fmt.Errorf("error saving hospital identity: %w", err)
	}

	s.metrics.IdentitySubmissions.WithLabelValues("hospital", "ok").Inc()
	s.logger.Info("hospital identity saved",
		zap.String("hospital", h.HospitalName),
		zap.String("contact", utils.ContactFingerprint(h.ContactNumber)),
	)
	return nil
}

func (s *identityServiceImpl) SubmitVendor(ctx context.Context, sessionID string, v models.VendorIdentity) error {
	if errs := s.validator.Vendor(v); errs != nil {
		s.metrics.IdentitySubmissions.WithLabelValues("vendor", "invalid").Inc()
		s.metrics.ValidationFailed("vendor", errs)
		return errs
	}

	if err := storage.PutJSON(ctx, s.session(sessionID), storage.KeyVendor, v); err != nil {
		s.metrics.IdentitySubmissions.WithLabelValues("vendor", "error").Inc()
		return fmt.Errorf("error saving vendor identity: %w", err)
	}

	s.metrics.IdentitySubmissions.WithLabelValues("vendor", "ok").Inc()
	s.logger.Info("vendor identity saved",
		zap.String("vendor", v.VendorName),
		zap.String("vehicle", v.VehicleNumber),
		zap.String("contact", utils.ContactFingerprint(v.ContactNumber)),
	)
	return nil
}

func (s *identityServiceImpl) Hospital(ctx context.Context, sessionID string) (*models.HospitalIdentity, error) {
	var h models.HospitalIdentity
	found, err := storage.GetJSON(ctx, s.session(sessionID), storage.KeyHospital, &h)
	if err != nil {
		return nil, fmt.Errorf("error loading hospital identity: %w", err)
	}
	if !found {
		return nil, &SessionRequiredError{Kind: "hospital", LoginPath: HospitalLoginPath}
	}
	return &h, nil
}

func (s *identityServiceImpl) Vendor(ctx context.Context, sessionID string) (*models.VendorIdentity, error) {
	var v models.VendorIdentity
	found, err := storage.GetJSON(ctx, s.session(sessionID), storage.KeyVendor, &v)
	if err != nil {
		return nil, fmt.Errorf("error loading vendor identity: %w", err)
	}
	if !found {
		return nil, &SessionRequiredError{Kind: "vendor", LoginPath: VendorLoginPath}
	}
	return &v, nil
}
