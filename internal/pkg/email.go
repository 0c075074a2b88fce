package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string // 发件人邮箱
	Password string // 授权码/密码
	From     string // 显示的发件人，可与 Username 相同
}

// Enabled 未配置 SMTP 时不发信
func (cfg SMTPConfig) Enabled() bool {
	return cfg.Host != "" && cfg.From != ""
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func RegistrationHTML(communityName string) string {
	return fmt.Sprintf(`<p>Hello,</p><p>We received the registration of <b>%s</b>. The community stays inactive until a marketplace admin reviews it.</p>`,
		html.EscapeString(communityName))
}
