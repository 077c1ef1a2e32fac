package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"promptgate/config"
	"promptgate/internal/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Alerter 高嚴重度事件的通知管道
type Alerter interface {
	Alert(ctx context.Context, event core.SecurityEvent) error
}

type NoopAlerter struct{}

func (NoopAlerter) Alert(context.Context, core.SecurityEvent) error { return nil }

// NewAlerter 設定 SNS topic 時使用 SNSAlerter
func NewAlerter(conf *config.Configuration, awsConfig aws.Config) Alerter {
	if conf.Filter.Alert.SNSTopicARN == "" {
		return NoopAlerter{}
	}
	return NewSNSAlerter(sns.NewFromConfig(awsConfig), conf.Filter.Alert.SNSTopicARN)
}

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSAlerter struct {
	api      SNSAPI
	topicARN string
}

func NewSNSAlerter(api SNSAPI, topicARN string) *SNSAlerter {
	return &SNSAlerter{api: api, topicARN: topicARN}
}

func (a *SNSAlerter) Alert(ctx context.Context, event core.SecurityEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = a.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Subject:  aws.String(fmt.Sprintf("SECURITY ALERT: %s content blocked", event.Stage)),
		Message:  aws.String(string(message)),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
