package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/jkemboi52/streamshare/configs"
)

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.ConfigOr("EMAIL_SENDER_NAME", "StreamShare")

	if apiKey == "" || senderEmail == "" {
		log.Println("⚠️ Email service not configured. Missing API key or sender email.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
	log.Println("✅ Email service initialized successfully.")
}

// SendEmail delivers a transactional email through the Brevo HTTP API.
// A nil EmailClient (unconfigured environment) makes this a logged no-op.
func SendEmail(recipientName, recipientEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Printf("Email service disabled, skipping email to %s (%s)", recipientName, recipientEmail)
		return
	}

	payload := brevoPayload{
		Sender: map[string]string{
			"name":  EmailClient.SenderName,
			"email": EmailClient.SenderEmail,
		},
		To: []map[string]string{
			{"name": recipientName, "email": recipientEmail},
		},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("🔥 Failed to marshal email payload: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		log.Printf("🔥 Failed to build email request: %v", err)
		return
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", EmailClient.APIKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", recipientEmail, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		log.Printf("🔥 Email API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return
	}

	log.Printf("✅ Email sent to %s: %s", recipientEmail, subject)
}

func WelcomeEmail(displayName string) string {
	return fmt.Sprintf("<h1>Welcome to StreamShare, %s!</h1><p>Your account is ready. Follow creators, share videos and start a conversation.</p>", displayName)
}

func PasswordResetEmail(resetURL string) string {
	return fmt.Sprintf("<h1>Password Reset</h1><p>Click <a href=%q>here</a> to reset your password. The link expires in 15 minutes.</p>", resetURL)
}

func PayoutDecisionEmail(displayName, status string, amount float64) string {
	return fmt.Sprintf("<h1>Payout %s</h1><p>Hi %s, your payout request for $%.2f has been %s.</p>", status, displayName, amount, status)
}
