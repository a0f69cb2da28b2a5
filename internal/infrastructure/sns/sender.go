package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-otp-auth/internal/config"
)

// Publisher emits login events to an SNS topic.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// API is the subset of *sns.Client used here.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   API
	topicARN string
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string) error { return nil }

// NewPublisher returns a no-op publisher when cfg.SNSLoginTopicARN is unset.
func NewPublisher(ctx context.Context, cfg *config.Config) (Publisher, error) {
	if cfg.SNSLoginTopicARN == "" {
		return noopPublisher{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return newPublisher(sns.NewFromConfig(awsCfg, opts...), cfg.SNSLoginTopicARN), nil
}

func newPublisher(client API, topicARN string) Publisher {
	return &publisher{client: client, topicARN: topicARN}
}

func (p *publisher) Publish(ctx context.Context, subject, message string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
