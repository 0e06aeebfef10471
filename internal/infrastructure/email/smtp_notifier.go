// Package email envía las notificaciones de reseteo de contraseña por SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Auth-api/pkg/config"
)

// Sender abstrae el envío (gomail.Dialer lo implementa con DialAndSend).
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier implementa auth.Notifier sobre gomail.
type SMTPNotifier struct {
	sender      Sender
	from        string
	frontendURL string
}

// NewSMTPNotifier construye el notificador con el dialer de gomail.
func NewSMTPNotifier(cfg config.SMTPConfig, frontendURL string) *SMTPNotifier {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return NewNotifier(d, cfg.From, frontendURL)
}

// NewNotifier permite inyectar el Sender (tests).
func NewNotifier(sender Sender, from, frontendURL string) *SMTPNotifier {
	return &SMTPNotifier{sender: sender, from: from, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// ResetLink <frontend>/reset-password?token=<plano>.
func ResetLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// SendPasswordResetEmail envía el enlace de reseteo. El token plano solo viaja aquí.
func (n *SMTPNotifier) SendPasswordResetEmail(_ context.Context, address, token, displayName string) error {
	if displayName == "" {
		displayName = strings.SplitN(address, "@", 2)[0]
	}
	link := ResetLink(n.frontendURL, token)

	var html bytes.Buffer
	if err := resetHTML.Execute(&html, resetData{Name: displayName, Link: link}); err != nil {
		return fmt.Errorf("email: plantilla: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.from, strings.SplitN(n.from, "@", 2)[0]))
	m.SetHeader("To", address)
	m.SetHeader("Subject", "Password Reset Request")
	m.SetBody("text/plain", resetText(displayName, link))
	m.AddAlternative("text/html", html.String())

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("email: enviar reseteo: %w", err)
	}
	return nil
}

type resetData struct {
	Name string
	Link string
}

var resetHTML = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Password Reset</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Password Reset Request</h2>
  <p>Hello {{.Name}},</p>
  <p>We received a request to reset your password. Click the link below to reset it:</p>
  <p><a href="{{.Link}}">Reset Password</a></p>
  <p style="word-break: break-all;">{{.Link}}</p>
  <p><strong>Important:</strong> This link will expire in 1 hour. If you didn't request this password reset, please ignore this email.</p>
</body>
</html>`))

func resetText(name, link string) string {
	return "Password Reset Request\n\n" +
		"Hello " + name + ",\n\n" +
		"We received a request to reset your password. Please open the link below to reset it:\n\n" +
		link + "\n\n" +
		"This link will expire in 1 hour. If you didn't request this password reset, please ignore this email.\n"
}
