package otp

import (
	"context"
	"fmt"

	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/models"
	"github.com/TheMichaelB/otpdesk/internal/transport"
)

// API paths.
const (
	PathGenerate      = "/v1/otp/generate"
	PathSendEmail     = "/v1/otp/send-email"
	PathVerify        = "/v1/otp/verify"
	PathOTPList       = "/api/admin/otp-list"
	PathEligibleUsers = "/api/admin/eligible-users"
)

// Service is a typed client for the OTP API.
type Service struct {
	transport transport.Transport
	logger    *events.Logger
}

// NewService creates an OTP service.
func NewService(transport transport.Transport, logger *events.Logger) *Service {
	return &Service{
		transport: transport,
		logger:    logger.WithField("service", "otp"),
	}
}

// Generate asks the API to create an OTP for email.
func (s *Service) Generate(ctx context.Context, email string) (models.OTPRecord, error) {
	s.logger.WithField("email", email).Debug("Requesting OTP")

	var record models.OTPRecord
	if err := s.transport.PostJSON(ctx, PathGenerate, models.GenerateRequest{Email: email}, &record); err != nil {
		return models.OTPRecord{}, fmt.Errorf("generate otp: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"email":      record.Email,
		"otp_id":     record.ID,
		"expires_at": record.ExpiresAt,
	}).Info("OTP generated")

	return record, nil
}

// SendEmail asks the API to email the OTP identified by token.
func (s *Service) SendEmail(ctx context.Context, token string) error {
	if err := s.transport.PostJSON(ctx, PathSendEmail, models.SendEmailRequest{Token: token}, nil); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	s.logger.Info("OTP email sent")
	return nil
}

// Verify checks code for email. The response body is not used.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	req := models.VerifyRequest{Email: email, Token: code}
	if err := s.transport.PostJSON(ctx, PathVerify, req, nil); err != nil {
		return fmt.Errorf("verify otp: %w", err)
	}

	s.logger.WithField("email", email).Info("OTP verified")
	return nil
}

// ListOTPs fetches the admin OTP listing. A missing list is returned as empty.
func (s *Service) ListOTPs(ctx context.Context) ([]models.OTPEntry, error) {
	var resp models.OTPListResponse
	if err := s.transport.GetJSON(ctx, PathOTPList, &resp); err != nil {
		return nil, fmt.Errorf("list otps: %w", err)
	}

	if resp.OTPs == nil {
		resp.OTPs = []models.OTPEntry{}
	}

	s.logger.WithField("count", len(resp.OTPs)).Debug("Fetched OTP list")
	return resp.OTPs, nil
}

// ListEligibleUsers fetches the admin eligible-users listing.
func (s *Service) ListEligibleUsers(ctx context.Context) ([]models.EligibleUser, error) {
	var resp models.EligibleUsersResponse
	if err := s.transport.GetJSON(ctx, PathEligibleUsers, &resp); err != nil {
		return nil, fmt.Errorf("list eligible users: %w", err)
	}

	if resp.Users == nil {
		resp.Users = []models.EligibleUser{}
	}

	s.logger.WithField("count", len(resp.Users)).Debug("Fetched eligible users")
	return resp.Users, nil
}
