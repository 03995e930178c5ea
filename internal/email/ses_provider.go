package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of *ses.Client the provider uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider sends through Amazon SES.
type SESProvider struct {
	config *SESConfig
	client SESAPI
}

// NewSESProvider loads AWS credentials from the default chain.
func NewSESProvider(ctx context.Context, cfg *SESConfig) (*SESProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESProvider{config: cfg, client: ses.NewFromConfig(awsCfg)}, nil
}

func NewSESProviderWithClient(cfg *SESConfig, client SESAPI) *SESProvider {
	return &SESProvider{config: cfg, client: client}
}

func (p *SESProvider) Send(ctx context.Context, email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	from := email.From
	if from == "" {
		from = (&mail.Address{Name: p.config.FromName, Address: p.config.FromEmail}).String()
	}

	body := &types.Body{}
	if email.Body != "" {
		body.Text = &types.Content{Data: aws.String(email.Body), Charset: aws.String("UTF-8")}
	}
	if email.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(email.HTMLBody), Charset: aws.String("UTF-8")}
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  email.To,
			CcAddresses:  email.Cc,
			BccAddresses: email.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if email.ReplyTo != "" {
		input.ReplyToAddresses = []string{email.ReplyTo}
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func (p *SESProvider) Validate() error {
	if p.config.Region == "" {
		return fmt.Errorf("SES region is required")
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("SES sender address is required")
	}
	return nil
}

func (p *SESProvider) Close() error {
	return nil
}
