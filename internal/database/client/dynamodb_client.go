package client

import (
	"promptgate/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// NewDynamoDBClient 建立 DynamoDB client，AWS.ENDPOINT 設定時指向本地 (dynamodb-local / localstack)
func NewDynamoDBClient(logger *zap.Logger, cfg aws.Config, config *config.Configuration) *dynamodb.Client {
	endpoint := config.AWS.Endpoint
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			logger.Info("dynamodb endpoint override", zap.String("endpoint", endpoint))
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(endpoint)
		}
	})
}
