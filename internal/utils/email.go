package utils

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/config"
	"mobilenest_back_end/internal/models"
)

// Mailer envoie les e-mails transactionnels par SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *zap.Logger
}

func NewMailer(cfg config.Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		logger:   logger,
	}
}

// SendPaymentReceived confirme la réception de la preuve de virement.
func (m *Mailer) SendPaymentReceived(ctx context.Context, to string, order models.Transaction) error {
	html, err := RenderPaymentReceivedHTML(order)
	if err != nil {
		return err
	}
	return m.send(ctx, to, fmt.Sprintf("Pembayaran diterima - %s", order.OrderNumber), html)
}

// SendOrderStatus prévient le client d'un changement de statut de sa commande.
func (m *Mailer) SendOrderStatus(ctx context.Context, to string, order models.Transaction) error {
	html, err := RenderOrderStatusHTML(order)
	if err != nil {
		return err
	}
	return m.send(ctx, to, StatusEmailSubject(order.Status), html)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	m.logger.Info("📤 Envoi de l'e-mail", zap.String("to", to), zap.String("subject", subject))
	return client.DialAndSendWithContext(ctx, msg)
}
