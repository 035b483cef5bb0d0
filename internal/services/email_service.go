package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendVerificationCode(email, code string) error
	SendSubmissionDecision(email, taskTitle string, approved bool, pts int, comment string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Sportpass, %s!</h2>
		<p>Thank you for registering. Submit proof of your activities, collect points and climb the leaderboard.</p>
		<p>Best regards,<br>The Sportpass Team</p>
	`, name)
	if err := s.send(email, "Welcome to Sportpass!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendVerificationCode(email, code string) error {
	body := fmt.Sprintf(`
		<h3>Confirm your email address</h3>
		<p>Your verification code: <strong>%s</strong></p>
		<p>If you did not register, you can ignore this email.</p>
	`, code)
	if err := s.send(email, "Your Sportpass verification code", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendSubmissionDecision(email, taskTitle string, approved bool, pts int, comment string) error {
	var subject, body string
	if approved {
		subject = "Your submission was approved"
		body = fmt.Sprintf(`
			<h3>Submission approved</h3>
			<p>Your submission for <strong>%s</strong> was approved: <strong>%d points</strong> were added to your account.</p>
		`, taskTitle, pts)
	} else {
		subject = "Your submission was rejected"
		body = fmt.Sprintf(`
			<h3>Submission rejected</h3>
			<p>Your submission for <strong>%s</strong> was rejected.</p>
		`, taskTitle)
	}
	if comment != "" {
		body += fmt.Sprintf("<p>Comment: %s</p>", comment)
	}
	if err := s.send(email, subject, body); err != nil {
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	return nil
}
