package services

import (
	"context"
	"fmt"

	"github.com/poofware/rental-service/internal/config"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// BookingNotice is everything a confirmation needs. Host may be nil when
// the owner could not be loaded.
type BookingNotice struct {
	Booking  *models.Booking
	Property *models.Property
	Guest    *models.User
	Host     *models.User
}

// BookingNotifier delivers booking confirmations. Implementations must not
// fail the booking: delivery errors are logged and swallowed.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, n BookingNotice)
}

type emailSender func(msg *mail.SGMailV3) error
type smsSender func(params *twilioApi.CreateMessageParams) error

type NotificationService struct {
	enabled   bool
	sandbox   bool
	fromEmail string
	fromPhone string
	orgName   string
	sendEmail emailSender
	sendSMS   smsSender
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	s := &NotificationService{
		enabled:   cfg.LDFlag_BookingNotifications,
		sandbox:   cfg.LDFlag_SendgridSandboxMode,
		fromEmail: cfg.LDFlag_SendgridFromEmail,
		fromPhone: cfg.LDFlag_TwilioFromPhone,
		orgName:   cfg.OrganizationName,
	}

	if cfg.SendGridAPIKey != "" {
		sg := sendgrid.NewSendClient(cfg.SendGridAPIKey)
		s.sendEmail = func(msg *mail.SGMailV3) error {
			resp, err := sg.Send(msg)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
			}
			return nil
		}
	}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		tw := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		s.sendSMS = func(params *twilioApi.CreateMessageParams) error {
			_, err := tw.Api.CreateMessage(params)
			return err
		}
	}
	return s
}

func (s *NotificationService) BookingConfirmed(ctx context.Context, n BookingNotice) {
	if !s.enabled {
		utils.Logger.Debugf("Booking notifications disabled; skipping booking %s", n.Booking.ID)
		return
	}
	s.emailGuest(n)
	s.textHost(n)
}

func (s *NotificationService) emailGuest(n BookingNotice) {
	if s.sendEmail == nil {
		utils.Logger.Warn("SendGrid not configured; guest confirmation e-mail not sent")
		return
	}
	if n.Guest == nil || n.Guest.Email == "" {
		return
	}

	from := mail.NewEmail(s.orgName, s.fromEmail)
	to := mail.NewEmail(n.Guest.DisplayName(), n.Guest.Email)
	subject := fmt.Sprintf("Your stay at %s is confirmed", n.Property.Title)
	plain := bookingEmailText(n)
	html := fmt.Sprintf(bookingEmailHTML,
		n.Guest.DisplayName(),
		n.Property.Title,
		n.Property.City,
		utils.FormatDate(n.Booking.StartDate),
		utils.FormatDate(n.Booking.EndDate),
		n.Booking.TotalPrice,
		n.Booking.ID.String(),
	)

	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if err := s.sendEmail(msg); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send confirmation e-mail for booking %s", n.Booking.ID)
		return
	}
	utils.Logger.Infof("Confirmation e-mail sent for booking %s", n.Booking.ID)
}

func (s *NotificationService) textHost(n BookingNotice) {
	if n.Host == nil || n.Host.PhoneNumber == nil || *n.Host.PhoneNumber == "" {
		return
	}
	if s.sendSMS == nil {
		utils.Logger.Warn("Twilio not configured; host SMS not sent")
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(*n.Host.PhoneNumber)
	params.SetFrom(s.fromPhone)
	params.SetBody(fmt.Sprintf(
		"%s: new booking for %s, %s to %s.",
		s.orgName,
		n.Property.Title,
		utils.FormatDate(n.Booking.StartDate),
		utils.FormatDate(n.Booking.EndDate),
	))
	if err := s.sendSMS(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to text host for booking %s", n.Booking.ID)
	}
}

func bookingEmailText(n BookingNotice) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour booking at %s (%s) is confirmed.\nCheck-in: %s\nCheck-out: %s\nTotal: $%.2f\n\nBooking ID: %s\n",
		n.Guest.DisplayName(),
		n.Property.Title,
		n.Property.City,
		utils.FormatDate(n.Booking.StartDate),
		utils.FormatDate(n.Booking.EndDate),
		n.Booking.TotalPrice,
		n.Booking.ID.String(),
	)
}

const bookingEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hi %s,</p>
  <p>Your booking at <strong>%s</strong> (%s) is confirmed.</p>
  <table cellpadding="4">
    <tr><td>Check-in</td><td>%s</td></tr>
    <tr><td>Check-out</td><td>%s</td></tr>
    <tr><td>Total</td><td>$%.2f</td></tr>
  </table>
  <p style="font-size: 12px; color: #888;">Booking ID: %s</p>
</body>
</html>`
