package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	FrontendURL   string
}

type Stripe struct {
	accounts      *account.Client
	links         *accountlink.Client
	webhookSecret string
	refreshURL    string
	returnURL     string
}

func NewStripe(cfg StripeConfig) *Stripe {
	backend := stripe.GetBackend(stripe.APIBackend)
	base := strings.TrimRight(cfg.FrontendURL, "/")
	return &Stripe{
		accounts:      &account.Client{B: backend, Key: cfg.SecretKey},
		links:         &accountlink.Client{B: backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		refreshURL:    base,
		returnURL:     base + "/vendor/profile/bank-detail",
	}
}

// CreateAccount 创建 Express 账户
func (s *Stripe) CreateAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx
	acct, err := s.accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create account: %w", err)
	}
	return acct.ID, nil
}

// OnboardingLink 生成 account_onboarding 链接
func (s *Stripe) OnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(s.refreshURL),
		ReturnURL:  stripe.String(s.returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := s.links.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account link: %w", err)
	}
	return link.URL, nil
}

// ParseWebhook 校验 Stripe-Signature 并解析出事件
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	out := &Event{ID: evt.ID, Type: string(evt.Type), Account: evt.Account}
	if out.Type == EventAccountUpdated && evt.Data != nil {
		var acct stripe.Account
		if err := json.Unmarshal(evt.Data.Raw, &acct); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		out.Account = acct.ID
		out.DetailsSubmitted = acct.DetailsSubmitted
		out.ChargesEnabled = acct.ChargesEnabled
	}
	return out, nil
}
