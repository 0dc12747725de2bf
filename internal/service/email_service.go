package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"
)

// SESClient is the part of the SES v2 client used to send mail
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    SESClient
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// SessionReport summarises a finished session
type SessionReport struct {
	SessionID string
	Kind      string
	Outcome   string
	Score     int
	Round     int
	Lives     int
	Correct   int
	Incorrect int
	Skipped   int
	EndedAt   time.Time
}

// NewEmailService creates a new email service
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Info().Msg("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	log.Debug().Str("region", awsRegion).Str("from", fromEmail).Msg("initializing email service with AWS SES")

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info().Str("from", fromEmail).Str("region", awsRegion).Msg("email service enabled")
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

// NewEmailServiceWithClient creates an enabled service around an existing client
func NewEmailServiceWithClient(client SESClient, fromEmail, fromName string, debug bool) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   client != nil && fromEmail != "",
		debug:     debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSessionReport mails the outcome of a finished session
func (s *EmailService) SendSessionReport(ctx context.Context, toEmail string, r SessionReport) error {
	if !s.enabled {
		log.Debug().Str("to", toEmail).Str("session_id", r.SessionID).Msg("skipping session report (email disabled)")
		return nil
	}

	subject := fmt.Sprintf("WordQuest %s session %s: %d points", r.Kind, r.Outcome, r.Score)
	ended := r.EndedAt.UTC().Format(time.RFC1123)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		td { padding: 4px 12px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Session %s</h1>
		</div>
		<div class="content">
			<table>
				<tr><td>Game</td><td>%s</td></tr>
				<tr><td>Score</td><td>%d</td></tr>
				<tr><td>Rounds completed</td><td>%d</td></tr>
				<tr><td>Lives left</td><td>%d</td></tr>
				<tr><td>Treasure chests</td><td>%d</td></tr>
				<tr><td>Mistakes</td><td>%d</td></tr>
				<tr><td>Skipped</td><td>%d</td></tr>
				<tr><td>Finished</td><td>%s</td></tr>
			</table>
		</div>
		<div class="footer">
			<p>Session %s. This is an automated email from WordQuest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, r.Outcome, r.Kind, r.Score, r.Round-1, r.Lives, r.Correct, r.Incorrect, r.Skipped, ended, r.SessionID)

	textBody := fmt.Sprintf(`Session %s

Game: %s
Score: %d
Rounds completed: %d
Lives left: %d
Treasure chests: %d
Mistakes: %d
Skipped: %d
Finished: %s

---
Session %s. This is an automated email from WordQuest. Please do not reply.
`, r.Outcome, r.Kind, r.Score, r.Round-1, r.Lives, r.Correct, r.Incorrect, r.Skipped, ended, r.SessionID)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	ev := log.Info().Str("to", toEmail).Str("subject", subject)
	if s.debug && result.MessageId != nil {
		ev = ev.Str("message_id", *result.MessageId)
	}
	ev.Msg("email sent")
	return nil
}
