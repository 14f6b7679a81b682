// Package mailer sends transactional mail through AWS SES. The only message
// the storefront sends is the password-recovery email.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SES sends mail from a verified sender identity.
type SES struct {
	client   *sesv2.Client
	sender   string
	resetURL string
}

// New loads the default AWS config for the given region and returns a mailer
// sending from the given verified address. resetURL is the public
// password-reset page; the token is appended as a query parameter.
func New(ctx context.Context, region, sender, resetURL string) (*SES, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("mailer.New: load aws config: %w", err)
	}
	return &SES{
		client:   sesv2.NewFromConfig(cfg),
		sender:   sender,
		resetURL: resetURL,
	}, nil
}

// SendPasswordReset mails a single-use recovery link to the user.
func (m *SES) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s?token=%s", m.resetURL, token)
	body := fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Open the link below to choose a new one. The link expires in 1 hour.\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.", link)

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String("Reset your password")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("mailer.SendPasswordReset: %w", err)
	}
	return nil
}
