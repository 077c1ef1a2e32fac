package database

import (
	"fmt"

	"promptgate/config"
	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	dynamoRepo "promptgate/internal/database/dynamodb/repository"
	fluentdRepo "promptgate/internal/database/fluentd/repository"
	"promptgate/internal/database/memory"
	mongoRepo "promptgate/internal/database/mongodb/repository"
	redisRepo "promptgate/internal/database/redis/repository"
	sqlRepo "promptgate/internal/database/sql/repository"
	"promptgate/internal/service/usage"
	"promptgate/internal/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewFluentdClient,
	client.NewAWSConfig,
	fluentdRepo.ProviderSet,
	NewUsageStore,
)

// NewUsageStore 依 USAGE.BACKEND 建立對應的儲存實作，只連線實際使用的後端
func NewUsageStore(logger *zap.Logger, conf *config.Configuration, trace *telemetry.Trace, awsConfig aws.Config) (usage.Store, func(), error) {
	backend := core.DatabaseType(conf.Usage.Backend)
	if backend == "" {
		backend = core.Mongo
	}
	logger.Info("usage store backend", zap.String("backend", string(backend)))

	switch backend {
	case core.Mongo:
		mongoClient, cleanup, err := client.NewMongoClient(logger, conf)
		if err != nil {
			return nil, nil, err
		}
		return mongoRepo.NewUsageRecordRepository(trace, logger, mongoClient), cleanup, nil
	case core.Redis:
		redisClient, cleanup, err := client.NewRedisClient(logger, conf)
		if err != nil {
			return nil, nil, err
		}
		return redisRepo.NewUsageRecordRepository(trace, conf, redisClient), cleanup, nil
	case core.DynamoDB:
		dynamoClient := client.NewDynamoDBClient(logger, awsConfig, conf)
		return dynamoRepo.NewUsageRecordRepository(trace, conf, dynamoClient), func() {}, nil
	case core.SQL:
		sqlClient, cleanup, err := client.NewSQLClient(logger, conf)
		if err != nil {
			return nil, nil, err
		}
		repository, err := sqlRepo.NewUsageRecordRepository(trace, sqlClient)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		return repository, cleanup, nil
	case core.Memory:
		logger.Warn("memory usage store is not durable; records are lost on restart")
		return memory.NewUsageRecordRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported usage backend: %s", backend)
	}
}
