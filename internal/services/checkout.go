package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sounddesk/backend/internal/config"
	"github.com/sounddesk/backend/internal/models"
	"github.com/sounddesk/backend/pkg/logger"
	"github.com/sounddesk/backend/pkg/response"
	"gorm.io/gorm"
)

// DefaultFeePercent applies when neither the tier nor the system config
// carries a commission setting.
const DefaultFeePercent = 10

// PlatformFee computes the platform's cut of amount in cents, rounding
// half-up on the fee only so that fee + payout always equals amount exactly.
func PlatformFee(amount int64, pct int) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*int64(pct) + 50) / 100
}

// CreatorPayout is the remainder after the platform fee.
func CreatorPayout(amount int64, pct int) int64 {
	return amount - PlatformFee(amount, pct)
}

type CheckoutService struct {
	db            *gorm.DB
	gateway       CheckoutGateway
	tiers         *TierService
	notifications *NotificationService
	configs       *SystemConfigService
	cfg           *config.Config
}

func NewCheckoutService(db *gorm.DB, gateway CheckoutGateway, cfg *config.Config) *CheckoutService {
	return &CheckoutService{
		db:            db,
		gateway:       gateway,
		tiers:         NewTierService(db),
		notifications: NewNotificationService(db),
		configs:       NewSystemConfigService(db),
		cfg:           cfg,
	}
}

type CheckoutAddOn struct {
	ID       uint  `json:"id" binding:"required"`
	Quantity int64 `json:"quantity" binding:"min=0"`
}

type CreateSessionRequest struct {
	RequestID uint            `json:"request_id" binding:"required"`
	Tier      string          `json:"tier" binding:"required"`
	AddOns    []CheckoutAddOn `json:"add_ons"`
}

type CreateSessionResponse struct {
	SessionURL string `json:"session_url"`
}

// CreateSession recomputes the price server-side and opens a hosted checkout
// session carrying the request id in its metadata. Client-submitted prices
// are never part of the input.
func (s *CheckoutService) CreateSession(ctx context.Context, callerUserID uint, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, req.RequestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	if request.UserID != callerUserID {
		return nil, response.NewForbidden("not the request owner")
	}
	if request.Status == models.RequestPaid || request.Status == models.RequestCancelled {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot pay for request in status %s", request.Status))
	}

	tier, err := s.tiers.GetByCode(req.Tier)
	if err != nil {
		if _, ok := response.IsAppError(err); ok {
			return nil, response.NewValidationError("invalid tier: " + req.Tier)
		}
		return nil, err
	}

	var lineItems []LineItem
	for _, serviceType := range request.ServiceTypeList() {
		price := s.tiers.ResolveBasePrice(tier, serviceType)
		lineItems = append(lineItems, LineItem{
			Name:       fmt.Sprintf("%s — %s tier", serviceType, tier.Name),
			UnitAmount: price,
			Quantity:   1,
		})
	}

	for _, item := range req.AddOns {
		addOn, err := s.tiers.GetAddOn(item.ID)
		if err != nil {
			return nil, err
		}
		if addOn.PerUnit {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			lineItems = append(lineItems, LineItem{Name: addOn.Name, UnitAmount: addOn.UnitPrice, Quantity: qty})
		} else {
			lineItems = append(lineItems, LineItem{Name: addOn.Name, UnitAmount: addOn.Price, Quantity: 1})
		}
	}

	metadata := map[string]string{
		MetaRequestID: strconv.FormatUint(uint64(request.ID), 10),
	}
	if request.CreatorID != nil {
		metadata[MetaCreatorID] = strconv.FormatUint(uint64(*request.CreatorID), 10)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &CheckoutSessionParams{
		Currency:   s.cfg.Platform.Currency,
		LineItems:  lineItems,
		Metadata:   metadata,
		SuccessURL: s.cfg.Gateway.SuccessURL,
		CancelURL:  s.cfg.Gateway.CancelURL,
	})
	if err != nil {
		logger.Error().Err(err).Uint("request_id", request.ID).Msg("checkout session creation failed")
		return nil, response.NewServerError("could not open checkout session")
	}

	return &CreateSessionResponse{SessionURL: session.URL}, nil
}

// feePercentFor resolves the commission percent for a paid request: the
// tier's commission when configured, then the platform config, then the flat
// default.
func (s *CheckoutService) feePercentFor(tierCode string) int {
	var tier models.Tier
	if err := s.db.Where("code = ?", tierCode).First(&tier).Error; err == nil {
		if tier.CommissionPercent != nil {
			return *tier.CommissionPercent
		}
	}
	return s.configs.GetInt("platform_fee_percent", DefaultFeePercent)
}

// HandleCheckoutCompleted reconciles a verified checkout.session.completed
// event. The gateway session id is the idempotency key: redelivery of an
// already-recorded session is a no-op.
func (s *CheckoutService) HandleCheckoutCompleted(data *CheckoutCompletedData) error {
	if data.SessionID == "" {
		return response.NewValidationError("event missing session id")
	}

	requestIDStr, ok := data.Metadata[MetaRequestID]
	if !ok {
		return response.NewValidationError("session metadata missing request_id")
	}
	requestID64, err := strconv.ParseUint(requestIDStr, 10, 32)
	if err != nil {
		return response.NewValidationError("session metadata request_id malformed")
	}
	requestID := uint(requestID64)

	var creatorProfileID *uint
	if idStr, ok := data.Metadata[MetaCreatorID]; ok && idStr != "" {
		if id64, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			id := uint(id64)
			creatorProfileID = &id
		}
	}

	return s.reconcile(requestID, data.SessionID, data.PaymentIntent, data.AmountTotal, data.Currency, creatorProfileID, nil)
}

// reconcile applies the PAID transition as one transaction: payment insert,
// status mutation, timeline event, notifications, and project
// materialization. Shared by the webhook and direct-confirm paths.
func (s *CheckoutService) reconcile(requestID uint, sessionID, intentID string, total int64, currency string, creatorProfileID *uint, actorID *uint) error {
	// Fast path for redelivery: the payment row already exists.
	var existing int64
	s.db.Model(&models.Payment{}).Where("session_id = ?", sessionID).Count(&existing)
	if existing > 0 {
		logger.Info().Str("session_id", sessionID).Msg("duplicate checkout event ignored")
		return nil
	}

	var request models.ServiceRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound("request not found for session")
	}
	if err != nil {
		return err
	}

	if request.Status == models.RequestPaid {
		// Paid through another session id; still idempotent from the
		// request's point of view.
		logger.Warn().Uint("request_id", requestID).Str("session_id", sessionID).
			Msg("request already paid, skipping")
		return nil
	}
	if !CanTransitionRequest(request.Status, models.RequestPaid) {
		return response.NewInvalidTransition(
			fmt.Sprintf("cannot mark request PAID from status %s", request.Status))
	}

	if creatorProfileID == nil {
		creatorProfileID = request.CreatorID
	}
	if currency == "" {
		currency = s.cfg.Platform.Currency
	}

	pct := s.feePercentFor(request.TierCode)
	fee := PlatformFee(total, pct)
	payout := total - fee
	now := time.Now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		payment := models.Payment{
			RequestID:        requestID,
			UserID:           request.UserID,
			CreatorProfileID: creatorProfileID,
			TotalAmount:      total,
			PlatformFee:      fee,
			CreatorAmount:    payout,
			Currency:         currency,
			SessionID:        sessionID,
			IntentID:         intentID,
			Status:           models.PaymentCompleted,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		result := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", requestID, request.Status).
			Updates(map[string]interface{}{
				"status":            models.RequestPaid,
				"status_updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewInvalidTransition("request status changed concurrently")
		}

		event := models.ProjectEvent{
			RequestID:   &requestID,
			Type:        models.EventPaymentCompleted,
			Description: fmt.Sprintf("Payment of %d %s received (fee %d, payout %d)", total, currency, fee, payout),
			ActorID:     actorID,
			Metadata:    fmt.Sprintf(`{"session_id":%q}`, sessionID),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		project := models.Project{
			RequestID:    requestID,
			UserID:       request.UserID,
			Name:         request.Title,
			ArtistName:   request.ArtistName,
			Genre:        request.Genre,
			TierCode:     request.TierCode,
			CurrentPhase: models.PhasePreProduction,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		if creatorProfileID != nil {
			for _, serviceType := range request.ServiceTypeList() {
				ps := models.ProjectService{
					ProjectID:        project.ID,
					ServiceType:      serviceType,
					CreatorProfileID: *creatorProfileID,
				}
				if err := tx.Create(&ps).Error; err != nil {
					return err
				}
			}
		}

		if err := s.notifications.CreateInTx(tx, request.UserID, models.NotifyPayment,
			"Payment received",
			fmt.Sprintf("Payment for %q confirmed. Your project has started.", request.Title),
			fmt.Sprintf("/projects/%d", project.ID)); err != nil {
			return err
		}

		if creatorProfileID != nil {
			var profile models.CreatorProfile
			if err := tx.First(&profile, *creatorProfileID).Error; err == nil {
				if err := s.notifications.CreateInTx(tx, profile.UserID, models.NotifyPayment,
					"New project started",
					fmt.Sprintf("%q was paid. Time to get to work.", request.Title),
					fmt.Sprintf("/projects/%d", project.ID)); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// HandleAccountUpdated syncs a creator's payout-account flags from the
// gateway's account object. Pure sync, no events or notifications.
func (s *CheckoutService) HandleAccountUpdated(data *AccountUpdatedData) error {
	if data.AccountID == "" {
		return response.NewValidationError("event missing account id")
	}

	var profile models.CreatorProfile
	err := s.db.Where("gateway_account_id = ?", data.AccountID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Account not linked to any profile; nothing to sync.
		logger.Warn().Str("account_id", data.AccountID).Msg("account update for unknown profile")
		return nil
	}
	if err != nil {
		return err
	}

	return s.db.Model(&profile).Updates(map[string]interface{}{
		"onboarding_done": data.DetailsSubmitted,
		"payouts_enabled": data.PayoutsEnabled,
	}).Error
}

// ConfirmDirect applies the PAID transition without a live gateway response,
// used for the simulated/manual payment flow. The price is recomputed from
// the stored tier, never taken from the client.
func (s *CheckoutService) ConfirmDirect(callerUserID, requestID uint) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	if request.UserID != callerUserID {
		return nil, response.NewForbidden("not the request owner")
	}
	if request.Status != models.RequestAccepted && request.Status != models.RequestAwaitingPayment {
		return nil, response.NewInvalidTransition(
			fmt.Sprintf("cannot confirm payment for request in status %s", request.Status))
	}

	tier, err := s.tiers.GetByCode(request.TierCode)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, serviceType := range request.ServiceTypeList() {
		total += s.tiers.ResolveBasePrice(tier, serviceType)
	}

	sessionID := "manual_" + uuid.NewString()
	if err := s.reconcile(requestID, sessionID, "", total, s.cfg.Platform.Currency, request.CreatorID, &callerUserID); err != nil {
		return nil, err
	}

	if err := s.db.First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

type PaymentListRequest struct {
	Page     int `form:"page" binding:"min=1"`
	PageSize int `form:"page_size" binding:"min=1,max=100"`
}

type PaymentListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Payment `json:"items"`
}

// ListPayments returns payments visible to the caller: artists their own,
// creators those paying out to their profile, admins everything.
func (s *CheckoutService) ListPayments(userID uint, role string, req *PaymentListRequest) (*PaymentListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Payment{})

	switch role {
	case models.RoleAdmin:
		// no scope filter
	case models.RoleCreator:
		var profile models.CreatorProfile
		err := s.db.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			query = query.Where("1 = 0")
		} else if err != nil {
			return nil, err
		} else {
			query = query.Where("creator_profile_id = ?", profile.ID)
		}
	default:
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	query.Count(&total)

	var items []models.Payment
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &PaymentListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}
