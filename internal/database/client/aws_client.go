package client

import (
	"context"
	"errors"
	"fmt"
	"promptgate/config"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// NewAWSConfig 讀取預設憑證鏈（env / shared config / IAM role），不會發出網路請求
func NewAWSConfig(logger *zap.Logger, conf *config.Configuration) (aws.Config, error) {
	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(conf.AWS.Region),
	}
	if conf.Generation.MaxRetries > 0 {
		opts = append(opts, awsConfig.WithRetryMaxAttempts(conf.Generation.MaxRetries+1))
	}
	cfg, err := awsConfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		logger.Error("failed to load aws config", zap.Error(err))
		return aws.Config{}, err
	}
	if conf.AWS.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(conf.AWS.Endpoint)
	}
	return cfg, nil
}

// HTTPClientWithTimeout 給個別 AWS service client 使用的逾時設定
func HTTPClientWithTimeout(timeoutMs int64) *awshttp.BuildableClient {
	client := awshttp.NewBuildableClient()
	if timeoutMs > 0 {
		client = client.WithTimeout(time.Duration(timeoutMs) * time.Millisecond)
	}
	return client
}

// SecretsGetter 方便測試替換
type SecretsGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveSecret 讀取 Secrets Manager 的字串值
func ResolveSecret(ctx context.Context, getter SecretsGetter, secretID string) (string, error) {
	out, err := getter.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", errors.New("secret " + secretID + " has no string value")
	}
	return *out.SecretString, nil
}

func NewSecretsManager(cfg aws.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(cfg)
}
