package sns

import (
	"context"
	"errors"
	"testing"

	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakePublisher struct {
	in  *awssns.PublishInput
	err error
}

func (f *fakePublisher) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &awssns.PublishOutput{}, nil
}

func TestSend(t *testing.T) {
	t.Parallel()

	fake := &fakePublisher{}
	ch := NewWithClient(fake, "arn:aws:sns:eu-west-1:123456789012:alerts")

	if err := ch.Send(context.Background(), "Subject line", "body text"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fake.in == nil {
		t.Fatal("Publish not called")
	}
	if *fake.in.TopicArn != "arn:aws:sns:eu-west-1:123456789012:alerts" {
		t.Errorf("TopicArn = %q", *fake.in.TopicArn)
	}
	if *fake.in.Subject != "Subject line" || *fake.in.Message != "body text" {
		t.Errorf("publish payload = %q / %q", *fake.in.Subject, *fake.in.Message)
	}
}

func TestSendPublishError(t *testing.T) {
	t.Parallel()

	fake := &fakePublisher{err: errors.New("throttled")}
	ch := NewWithClient(fake, "arn:aws:sns:eu-west-1:123456789012:alerts")

	if err := ch.Send(context.Background(), "s", "b"); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestSendEmptyTopicNoop(t *testing.T) {
	t.Parallel()

	fake := &fakePublisher{}
	ch := NewWithClient(fake, "")

	if err := ch.Send(context.Background(), "s", "b"); err != nil {
		t.Fatalf("Send with empty topic: %v", err)
	}
	if fake.in != nil {
		t.Error("Publish called despite empty topic")
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := NewWithClient(nil, "").Name(); got != "sns" {
		t.Errorf("Name = %q, want sns", got)
	}
}
