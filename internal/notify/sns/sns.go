// Package sns delivers engagement alerts to an AWS SNS topic, typically
// fanned out to an email subscription.
package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

// PublishAPI is the slice of the SNS client this channel needs.
type PublishAPI interface {
	Publish(ctx context.Context, in *awssns.PublishInput, opts ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// Channel publishes alerts to an SNS topic.
type Channel struct {
	api      PublishAPI
	topicARN string
}

// New loads the default AWS config and returns a channel for the topic.
func New(ctx context.Context, topicARN string) (*Channel, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("sns: load aws config: %w", err)
	}
	return NewWithClient(awssns.NewFromConfig(cfg), topicARN), nil
}

// NewWithClient wires an existing SNS client, mainly for tests.
func NewWithClient(api PublishAPI, topicARN string) *Channel {
	return &Channel{api: api, topicARN: topicARN}
}

// Name identifies the channel in logs and metrics.
func (c *Channel) Name() string { return "sns" }

// Send publishes the alert to the configured topic. If no topic is
// configured, Send is a no-op.
func (c *Channel) Send(ctx context.Context, subject, body string) error {
	if c.topicARN == "" {
		return nil
	}

	_, err := c.api.Publish(ctx, &awssns.PublishInput{
		TopicArn: aws.String(c.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sns: publish: %w", err)
	}
	return nil
}
