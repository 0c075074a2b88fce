package payment

import (
	"context"
	"errors"
)

var ErrInvalidSignature = errors.New("webhook signature verification failed")

const (
	EventAccountUpdated        = "account.updated"
	EventAccountDeauthorized   = "account.application.deauthorized"
	EventAccountAuthorized     = "account.application.authorized"
	EventExternalAccountAdded  = "account.external_account.created"
	EventExternalAccountDelete = "account.external_account.deleted"
	EventExternalAccountUpdate = "account.external_account.updated"
)

// Event webhook 事件中业务关心的字段
type Event struct {
	ID               string
	Type             string
	Account          string
	DetailsSubmitted bool
	ChargesEnabled   bool
}

// Gateway 支付服务商适配层：收款账户开通 + webhook 验签
type Gateway interface {
	CreateAccount(ctx context.Context, email string) (string, error)
	OnboardingLink(ctx context.Context, accountID string) (string, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
