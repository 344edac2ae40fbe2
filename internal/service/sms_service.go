package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/models"
)

// SMSService delivers text messages through carrier email-to-SMS gateways.
// The recipient address is <10-digit-number>@<carrier-gateway-domain>.
type SMSService struct {
	cfg *config.SMSConfig

	// send is swappable in tests.
	send func(to, body string) error
}

// NewSMSService creates the SMS service.
func NewSMSService(cfg *config.SMSConfig) *SMSService {
	s := &SMSService{cfg: cfg}
	s.send = s.sendViaSMTP
	return s
}

// SetConfig updates the runtime SMS configuration.
func (s *SMSService) SetConfig(cfg *config.SMSConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

func (s *SMSService) schoolName() string {
	if s.cfg != nil && strings.TrimSpace(s.cfg.SchoolName) != "" {
		return strings.TrimSpace(s.cfg.SchoolName)
	}
	return "Astra Preschool"
}

// GatewayAddress resolves the email-to-SMS address for a phone and carrier.
func (s *SMSService) GatewayAddress(phone, carrier string) (string, error) {
	number := normalizePhone(phone)
	if number == "" {
		return "", ErrPhoneMissing
	}
	carrier = strings.ToLower(strings.TrimSpace(carrier))
	if s.cfg == nil || len(s.cfg.Gateways) == 0 {
		return "", ErrSMSDisabled
	}
	domain, ok := s.cfg.Gateways[carrier]
	if !ok || strings.TrimSpace(domain) == "" {
		return "", ErrUnknownCarrier
	}
	return number + "@" + domain, nil
}

// SendToUser delivers a raw message to an account's phone.
func (s *SMSService) SendToUser(user *models.User, body string) error {
	if user == nil {
		return ErrUserNotFound
	}
	return s.SendToPhone(user.Phone, user.Carrier, body)
}

// SendToPhone delivers a raw message to a phone/carrier pair.
func (s *SMSService) SendToPhone(phone, carrier, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrSMSDisabled
	}
	to, err := s.GatewayAddress(phone, carrier)
	if err != nil {
		return err
	}
	return s.send(to, body)
}

// SendOtp delivers a one-time login code.
func (s *SMSService) SendOtp(user *models.User, code string, expireMinutes int) error {
	body := fmt.Sprintf("%s: Your login code is %s. It expires in %d minutes. Do not share it.",
		s.schoolName(), code, expireMinutes)
	return s.SendToUser(user, body)
}

// PaymentConfirmationMessage renders the post-confirmation receipt text.
func (s *SMSService) PaymentConfirmationMessage(payment *models.Payment, student *models.Student) string {
	return fmt.Sprintf("Payment of ₹%s received for %s (%s). Receipt: %s. Thank you! - %s",
		payment.Amount.String(), student.Name, student.StudentCode, payment.ReceiptNumber, s.schoolName())
}

// FeeReminderMessage renders the default outstanding-balance reminder.
func (s *SMSService) FeeReminderMessage(student *models.Student) string {
	return fmt.Sprintf("Fee Reminder: ₹%s pending for %s. Please pay at your earliest. - %s",
		student.Balance.String(), student.Name, s.schoolName())
}

// SendPaymentConfirmation delivers the receipt text to the paying parent.
func (s *SMSService) SendPaymentConfirmation(user *models.User, payment *models.Payment, student *models.Student) error {
	return s.SendToUser(user, s.PaymentConfirmationMessage(payment, student))
}

// SendFeeReminder delivers a reminder, with an optional custom message.
func (s *SMSService) SendFeeReminder(phone, carrier string, student *models.Student, message string) error {
	body := strings.TrimSpace(message)
	if body == "" {
		body = s.FeeReminderMessage(student)
	}
	return s.SendToPhone(phone, carrier, body)
}

func (s *SMSService) sendViaSMTP(to, body string) error {
	if s.cfg.SMTPHost == "" || s.cfg.SMTPPort == 0 || s.cfg.From == "" {
		return ErrSMSDisabled
	}

	msg := buildSMSMessage(s.cfg.From, to, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}

	if s.cfg.UseTLS {
		return sendMailWithStartTLS(addr, auth, s.cfg.SMTPHost, s.cfg.From, []string{to}, []byte(msg))
	}
	return sendMailPlain(addr, auth, s.cfg.SMTPHost, s.cfg.From, []string{to}, []byte(msg))
}

// normalizePhone keeps the trailing 10 digits, dropping country prefixes.
func normalizePhone(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 10 {
		return ""
	}
	return string(digits[len(digits)-10:])
}

func buildSMSMessage(from, to, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString("Subject: \r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
