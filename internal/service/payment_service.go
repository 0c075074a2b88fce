package service

import (
	"context"
	"log/slog"

	"Local_Market/internal/model"
	"Local_Market/internal/payment"
)

type OnboardingStore interface {
	UpdateOnboarding(ctx context.Context, accountID, status string, chargesEnabled bool) (int64, error)
}

type ReplayGuard interface {
	FirstSeen(ctx context.Context, source, eventID string) (bool, error)
	Forget(ctx context.Context, source, eventID string) error
}

const webhookSource = "stripe"

// PaymentService 处理支付服务商的 webhook
type PaymentService struct {
	gateway payment.Gateway
	vendors OnboardingStore
	guard   ReplayGuard
	logger  *slog.Logger
}

func NewPaymentService(gateway payment.Gateway, vendors OnboardingStore, guard ReplayGuard, logger *slog.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, vendors: vendors, guard: guard, logger: logger}
}

// OnboardingStatus 资料提交且可收款才算完成
func OnboardingStatus(detailsSubmitted, chargesEnabled bool) string {
	if detailsSubmitted && chargesEnabled {
		return model.OnboardingComplete
	}
	return model.OnboardingPending
}

// HandleWebhook 验签失败返回 payment.ErrInvalidSignature；未知事件只记录日志
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	first, err := s.guard.FirstSeen(ctx, webhookSource, evt.ID)
	if err != nil {
		return err
	}
	if !first {
		s.logger.Info("duplicate webhook event ignored", "id", evt.ID, "type", evt.Type)
		return nil
	}
	if err := s.dispatch(ctx, evt); err != nil {
		// 允许对方重投
		_ = s.guard.Forget(ctx, webhookSource, evt.ID)
		return err
	}
	return nil
}

func (s *PaymentService) dispatch(ctx context.Context, evt *payment.Event) error {
	switch evt.Type {
	case payment.EventAccountUpdated:
		status := OnboardingStatus(evt.DetailsSubmitted, evt.ChargesEnabled)
		n, err := s.vendors.UpdateOnboarding(ctx, evt.Account, status, evt.ChargesEnabled)
		if err != nil {
			return err
		}
		s.logger.Info("vendor onboarding updated", "account", evt.Account, "status", status, "vendors", n)
	case payment.EventAccountDeauthorized:
		n, err := s.vendors.UpdateOnboarding(ctx, evt.Account, model.OnboardingNone, false)
		if err != nil {
			return err
		}
		s.logger.Info("vendor account deauthorized", "account", evt.Account, "vendors", n)
	case payment.EventAccountAuthorized,
		payment.EventExternalAccountAdded,
		payment.EventExternalAccountDelete,
		payment.EventExternalAccountUpdate:
		s.logger.Info("account event received", "id", evt.ID, "type", evt.Type, "account", evt.Account)
	default:
		s.logger.Info("unhandled webhook event type", "id", evt.ID, "type", evt.Type)
	}
	return nil
}
