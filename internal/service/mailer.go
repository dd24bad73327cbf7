package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/skyweb/vms/internal/domain"
)

// SESMailer emails the host when a visitor checks in and is waiting for
// approval.
type SESMailer struct {
	client *ses.Client
	from   string
}

// NewSESMailer creates a mailer using the default AWS credential chain.
func NewSESMailer(ctx context.Context, from string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}, nil
}

// Name identifies the channel in logs.
func (m *SESMailer) Name() string { return "email" }

// Notify sends the approval-request email. Hosts without a directory entry
// or email address are skipped without error.
func (m *SESMailer) Notify(ctx context.Context, alert CheckInAlert) error {
	if alert.Host == nil || alert.Host.Email == "" {
		return nil
	}

	subject := "Visitor waiting for approval"
	body := buildHostEmailBody(alert.Visitor, alert.Host)

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{alert.Host.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send host email: %w", err)
	}
	return nil
}

func buildHostEmailBody(v domain.Visitor, host *domain.User) string {
	department := v.HostDepartment
	if department == "" {
		department = "N/A"
	}
	phone := v.PhoneNumber
	if phone == "" {
		phone = "N/A"
	}

	return fmt.Sprintf(
		"VISITOR\n"+
			"Name: %s\n"+
			"Company: %s\n"+
			"Phone: %s\n"+
			"Purpose: %s\n\n"+
			"HOST\n"+
			"%s - %s\n\n"+
			"ACTION REQUIRED\n"+
			"Log in to approve or decline the visit.",
		v.FullName, v.Company, phone, v.Purpose, host.Name, department,
	)
}
