// internal/workers/communication/send-eoi-notification/service.go
package sendeoinotification

import (
	"context"
	"fmt"
	"time"

	"bdmatch-workers/internal/common/errors"
	"bdmatch-workers/internal/common/logger"
	"bdmatch-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// EmailSender sends one email. Implemented by the SES client; mocked in
// tests.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender publishes one SMS. Implemented by the SNS client; mocked in
// tests.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Service formats and delivers EOI lifecycle notifications.
type Service struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewService(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Service {
	return &Service{
		config: config,
		email:  email,
		sms:    sms,
		logger: log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	switch input.Channel {
	case ChannelEmail:
		return s.sendEmail(ctx, input)
	case ChannelSMS:
		return s.sendSMS(ctx, input)
	default:
		return nil, errors.NewValidationFailedError(
			fmt.Sprintf("unsupported channel %q", input.Channel))
	}
}

func (s *Service) validate(input *Input) error {
	if input.EventType == "" || input.EoiID == "" {
		return errors.NewValidationFailedError("eventType and eoiId are required")
	}
	if input.Channel == ChannelEmail && !validation.ValidateEmail(input.ToEmail) {
		return errors.NewValidationFailedError(
			fmt.Sprintf("invalid recipient email %q", input.ToEmail))
	}
	if input.Channel == ChannelSMS && input.ToPhone == "" {
		return errors.NewValidationFailedError("toPhone is required for sms notifications")
	}
	return nil
}

func (s *Service) sendEmail(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.EmailEnabled || s.email == nil {
		s.logger.Info("email notifications disabled, skipping", map[string]interface{}{
			"eoiId":     input.EoiID,
			"eventType": input.EventType,
		})
		return &Output{Skipped: true}, nil
	}

	subject, body := s.composeMessage(input)

	result, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{input.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
	}

	s.logger.Info("notification email sent", map[string]interface{}{
		"eoiId":     input.EoiID,
		"eventType": input.EventType,
		"messageId": aws.ToString(result.MessageId),
	})

	return &Output{
		Success:   true,
		MessageID: aws.ToString(result.MessageId),
		Provider:  "SES",
		SentAt:    time.Now().UTC(),
	}, nil
}

func (s *Service) sendSMS(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.SMSEnabled || s.sms == nil {
		s.logger.Info("sms notifications disabled, skipping", map[string]interface{}{
			"eoiId":     input.EoiID,
			"eventType": input.EventType,
		})
		return &Output{Skipped: true}, nil
	}

	_, body := s.composeMessage(input)

	result, err := s.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.ToPhone),
		Message:     aws.String(body),
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(ChannelSMS, err)
	}

	s.logger.Info("notification sms sent", map[string]interface{}{
		"eoiId":     input.EoiID,
		"eventType": input.EventType,
		"messageId": aws.ToString(result.MessageId),
	})

	return &Output{
		Success:   true,
		MessageID: aws.ToString(result.MessageId),
		Provider:  "SNS",
		SentAt:    time.Now().UTC(),
	}, nil
}

func (s *Service) composeMessage(input *Input) (subject, body string) {
	title := input.EoiTitle
	if title == "" {
		title = input.EoiID
	}

	switch input.EventType {
	case "eoi_sent":
		subject = fmt.Sprintf("New expression of interest: %s", title)
		body = fmt.Sprintf("You have received a new expression of interest (%s). Log in to review and respond.", title)
	case "eoi_accepted":
		subject = fmt.Sprintf("Your expression of interest was accepted: %s", title)
		body = fmt.Sprintf("Good news: your expression of interest (%s) was accepted.", title)
	case "eoi_rejected":
		subject = fmt.Sprintf("Your expression of interest was declined: %s", title)
		body = fmt.Sprintf("Your expression of interest (%s) was declined.", title)
	case "eoi_withdrawn":
		subject = fmt.Sprintf("Expression of interest withdrawn: %s", title)
		body = fmt.Sprintf("The expression of interest (%s) was withdrawn by its initiator.", title)
	case "eoi_expired":
		subject = fmt.Sprintf("Expression of interest expired: %s", title)
		body = fmt.Sprintf("The expression of interest (%s) reached its validity deadline and expired.", title)
	default:
		subject = fmt.Sprintf("Update on expression of interest: %s", title)
		body = fmt.Sprintf("There is an update on the expression of interest (%s).", title)
	}

	if input.Message != "" {
		body = input.Message
	}
	return subject, body
}
