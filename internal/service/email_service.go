package service

import (
	"log/slog"

	"Local_Market/internal/pkg"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	logger   *slog.Logger
	send     func(cfg pkg.SMTPConfig, to, subject, html string) error
}

func NewEmailService(cfg pkg.SMTPConfig, logger *slog.Logger) *EmailService {
	return &EmailService{emailCfg: cfg, logger: logger, send: pkg.SendEmail}
}

// SendRegistrationReceived 注册成功后异步通知组织者；未配置 SMTP 时跳过
func (s *EmailService) SendRegistrationReceived(to, communityName string) {
	if s == nil || !s.emailCfg.Enabled() || to == "" {
		return
	}
	go func() {
		html := pkg.RegistrationHTML(communityName)
		if err := s.send(s.emailCfg, to, "Community registration received", html); err != nil {
			s.logger.Warn("registration mail failed", "to", to, "error", err)
		}
	}()
}
