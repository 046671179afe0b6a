// Package notifications provides interfaces for sending notifications.
// Actual delivery (email/SMS gateways) is delegated to providers; this
// package only decides when a report event is worth announcing.
package notifications

import (
	"context"
	"fmt"
	"log"

	"cafetrack/internal/domain"
)

// EmailNotification represents an email to send
type EmailNotification struct {
	To      string
	Subject string
	Body    string
}

// SMSNotification represents an SMS to send
type SMSNotification struct {
	Phone   string
	Message string
}

// EmailProvider defines the interface for email providers
type EmailProvider interface {
	Send(ctx context.Context, notification EmailNotification) error
}

// SMSProvider defines the interface for SMS providers
type SMSProvider interface {
	Send(ctx context.Context, notification SMSNotification) error
}

// Notifier announces report lifecycle events. Delivery is best-effort:
// failures are logged, never returned to the mutation that triggered them.
type Notifier struct {
	email EmailProvider
	sms   SMSProvider
	// AdminEmail receives new-report announcements; empty disables them.
	AdminEmail string
}

// NewNotifier creates a notifier with the given providers; either may be
// nil to silently skip that channel.
func NewNotifier(email EmailProvider, sms SMSProvider, adminEmail string) *Notifier {
	return &Notifier{email: email, sms: sms, AdminEmail: adminEmail}
}

// ReportReceived announces a freshly filed report to the admin inbox.
func (n *Notifier) ReportReceived(ctx context.Context, r *domain.Report) {
	if n.email == nil || n.AdminEmail == "" {
		return
	}
	err := n.email.Send(ctx, EmailNotification{
		To:      n.AdminEmail,
		Subject: fmt.Sprintf("Nuevo reporte %s", r.Folio),
		Body: fmt.Sprintf("%s reporta una falla de %s (%s) en %s, zona %s.",
			r.ReporterName, r.EquipmentType, r.EquipmentModel, r.CompanyName, r.Zone),
	})
	if err != nil {
		log.Printf("notifications: report received %s: %v", r.Folio, err)
	}
}

// ReportCompleted tells the reporter their equipment is fixed.
func (n *Notifier) ReportCompleted(ctx context.Context, r *domain.Report) {
	if n.sms == nil || r.PhoneNumber == "" {
		return
	}
	err := n.sms.Send(ctx, SMSNotification{
		Phone:   r.PhoneNumber,
		Message: fmt.Sprintf("Tu reporte %s ha sido completado. ¡Gracias por tu paciencia!", r.Folio),
	})
	if err != nil {
		log.Printf("notifications: report completed %s: %v", r.Folio, err)
	}
}

// LogEmailProvider writes emails to the process log instead of sending
// them; the default in development.
type LogEmailProvider struct{}

func (LogEmailProvider) Send(_ context.Context, n EmailNotification) error {
	log.Printf("📧 [email to %s] %s: %s", n.To, n.Subject, n.Body)
	return nil
}

// LogSMSProvider writes SMS messages to the process log.
type LogSMSProvider struct{}

func (LogSMSProvider) Send(_ context.Context, n SMSNotification) error {
	log.Printf("📱 [sms to %s] %s", n.Phone, n.Message)
	return nil
}
