package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer handles sending emails
type Mailer struct {
	config Config
}

// New creates a new Mailer instance
func New(cfg Config) *Mailer {
	return &Mailer{config: cfg}
}

// SendOTP sends the verification-code email. videoPassword is included when
// the hosted demo video is password protected.
func (m *Mailer) SendOTP(toEmail, name, code string, expiryMinutes, maxAttempts int, videoPassword string) error {
	subject := "Your OTP for ThemeStore Demo Access"

	body, err := render(otpTemplate, map[string]interface{}{
		"Name":          name,
		"Code":          code,
		"ExpiryMinutes": expiryMinutes,
		"MaxAttempts":   maxAttempts,
		"VideoPassword": videoPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// SendDemoLink sends the watch URL to a verified lead
func (m *Mailer) SendDemoLink(toEmail, name, demoURL string, expiryMinutes, maxViews int, videoPassword string) error {
	subject := "Your ThemeStore Demo Link"

	body, err := render(demoLinkTemplate, map[string]interface{}{
		"Name":          name,
		"DemoURL":       demoURL,
		"ExpiryMinutes": expiryMinutes,
		"MaxViews":      maxViews,
		"VideoPassword": videoPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// SendQueryResponse delivers a sales answer to a client question
func (m *Mailer) SendQueryResponse(toEmail, name, queryText, response string) error {
	subject := "Response to Your Query - ThemeStore Demo Access"

	body, err := render(queryResponseTemplate, map[string]interface{}{
		"Name":     name,
		"Query":    queryText,
		"Response": response,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// SendAbandonedAlert notifies the sales team that a lead closed the demo
// without finishing it
func (m *Mailer) SendAbandonedAlert(toEmail, companyName, leadEmail string, progress float64) error {
	subject := fmt.Sprintf("Demo abandoned: %s", companyName)

	body, err := render(abandonedAlertTemplate, map[string]interface{}{
		"CompanyName": companyName,
		"LeadEmail":   leadEmail,
		"Progress":    fmt.Sprintf("%.0f", progress),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// send delivers an email via SMTP
func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}

	var msg bytes.Buffer
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg.Bytes())
	if err != nil {
		log.Printf("❌ Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

func render(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, data)
	return buf.String(), err
}

const otpTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;margin:0;padding:0;">
    <div style="max-width:600px;margin:0 auto;padding:20px;">
        <h2>Your OTP for Demo Access</h2>
        <p>Hello <strong>{{.Name}}</strong>,</p>
        <p>Your One-Time Password (OTP) for accessing the ThemeStore demo is:</p>
        <div style="background:#f4f4f4;border:2px dashed #667eea;padding:20px;text-align:center;margin:20px 0;font-size:32px;font-weight:bold;color:#667eea;letter-spacing:5px;">{{.Code}}</div>
        <p>This OTP will expire in <strong>{{.ExpiryMinutes}} minutes</strong>.</p>
{{if .VideoPassword}}
        <div style="background:#fff3cd;border:2px solid #ffc107;border-radius:8px;padding:20px;margin:20px 0;">
            <h3 style="color:#856404;margin-top:0;">🔒 Video Password Required</h3>
            <p style="color:#856404;"><strong>Important:</strong> The demo video is password-protected. Enter this password when the player loads:</p>
            <div style="background:#fff;border:2px dashed #ffc107;padding:15px;text-align:center;margin:15px 0;border-radius:6px;">
                <span style="font-size:24px;font-weight:bold;color:#667eea;letter-spacing:3px;">{{.VideoPassword}}</span>
            </div>
            <p style="color:#856404;font-size:13px;margin-bottom:0;">Please keep this password secure and do not share it with anyone.</p>
        </div>
{{end}}
        <p style="color:#e74c3c;font-size:14px;"><strong>Important:</strong> Do not share this OTP with anyone. You have a maximum of {{.MaxAttempts}} attempts to verify.</p>
        <p>If you did not request this OTP, please ignore this email.</p>
        <hr>
        <p style="font-size:12px;color:#666;">This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>`

const demoLinkTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;margin:0;padding:0;">
    <div style="max-width:600px;margin:0 auto;padding:20px;">
        <h2>Your Demo Link is Ready</h2>
        <p>Hello <strong>{{.Name}}</strong>,</p>
        <p>Thank you for verifying your email. Use the link below to watch the ThemeStore demo:</p>
        <div style="background:#f8f9fa;border:2px dashed #667eea;padding:20px;text-align:center;margin:20px 0;border-radius:6px;word-break:break-all;">
            <a href="{{.DemoURL}}" style="color:#667eea;font-weight:bold;">{{.DemoURL}}</a>
        </div>
        <p>This link is valid for <strong>{{.ExpiryMinutes}} minutes</strong> and can be used up to <strong>{{.MaxViews}}</strong> time(s).</p>
{{if .VideoPassword}}
        <p><strong>🔒 Video Password:</strong> the video is password-protected. Password: <strong>{{.VideoPassword}}</strong></p>
{{end}}
        <hr>
        <p style="font-size:12px;color:#666;">This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>`

const queryResponseTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;margin:0;padding:0;background-color:#f5f5f5;">
    <div style="max-width:600px;margin:0 auto;background-color:#ffffff;">
        <div style="background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:white;padding:30px 20px;text-align:center;">
            <h1 style="margin:0;font-size:24px;">ThemeStore Demo Access</h1>
        </div>
        <div style="padding:30px 20px;">
            <p>Hello <strong>{{.Name}}</strong>,</p>
            <p>Thank you for your question about the demo. Here is our response:</p>
            <div style="background:#f8f9fa;padding:20px;border-left:4px solid #667eea;margin:20px 0;border-radius:4px;">
                <p style="margin:0;white-space:pre-wrap;">{{.Query}}</p>
            </div>
            <div style="background:#e8f5e9;padding:20px;border-left:4px solid #4caf50;margin:20px 0;border-radius:4px;">
                <p style="margin:0;white-space:pre-wrap;">{{.Response}}</p>
            </div>
            <p>If you have any further questions, just reply to this email.</p>
        </div>
    </div>
</body>
</html>`

const abandonedAlertTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;margin:0;padding:0;">
    <div style="max-width:600px;margin:0 auto;padding:20px;">
        <h2>⚠️ Demo Abandoned</h2>
        <p><strong>{{.CompanyName}}</strong> ({{.LeadEmail}}) closed the demo video without completing it.</p>
        <p>Watched: <strong>{{.Progress}}%</strong></p>
        <p>Consider a follow-up call while the demo is still fresh.</p>
    </div>
</body>
</html>`
