package repository

import (
	"context"
	"fmt"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API 只列出使用到的操作，方便測試替換
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// usageItem partition key user_id，sort key record_key = <13 位毫秒>#<request_id>
type usageItem struct {
	UserID                 string `dynamodbav:"user_id"`
	RecordKey              string `dynamodbav:"record_key"`
	Timestamp              string `dynamodbav:"timestamp"`
	TimestampMs            int64  `dynamodbav:"timestamp_ms"`
	RequestID              string `dynamodbav:"request_id"`
	RequestType            string `dynamodbav:"request_type"`
	ModelID                string `dynamodbav:"model_id,omitempty"`
	InputTokens            int    `dynamodbav:"input_tokens"`
	OutputTokens           int    `dynamodbav:"output_tokens"`
	ResponseTimeMs         int64  `dynamodbav:"response_time_ms"`
	ContentFilterTriggered bool   `dynamodbav:"content_filter_triggered"`
	Outcome                string `dynamodbav:"outcome"`
}

type UsageRecordRepository struct {
	trace *telemetry.Trace
	api   API
	table string
}

func NewUsageRecordRepository(trace *telemetry.Trace, config *config.Configuration, api API) *UsageRecordRepository {
	return &UsageRecordRepository{trace: trace, api: api, table: config.Usage.DynamoDBTable}
}

func recordKey(ts time.Time, requestID string) string {
	return fmt.Sprintf("%013d#%s", ts.UnixMilli(), requestID)
}

// Append PutItem，sort key 含 request_id，同一毫秒也不會覆蓋
func (repository *UsageRecordRepository) Append(contextValue context.Context, record core.UsageRecord) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceUsageWriteMeta{
		Backend:   string(core.DynamoDB),
		UserID:    record.UserID,
		RequestID: record.RequestID,
		Outcome:   string(record.Outcome),
		Triggered: record.ContentFilterTriggered,
	})

	ts := record.Timestamp.UTC()
	item, marshalError := attributevalue.MarshalMap(usageItem{
		UserID:                 record.UserID,
		RecordKey:              recordKey(ts, record.RequestID),
		Timestamp:              ts.Format(time.RFC3339Nano),
		TimestampMs:            ts.UnixMilli(),
		RequestID:              record.RequestID,
		RequestType:            record.RequestType,
		ModelID:                record.ModelID,
		InputTokens:            record.InputTokens,
		OutputTokens:           record.OutputTokens,
		ResponseTimeMs:         record.ResponseTimeMs,
		ContentFilterTriggered: record.ContentFilterTriggered,
		Outcome:                string(record.Outcome),
	})
	if marshalError != nil {
		returnedError = marshalError
		return returnedError
	}
	_, returnedError = repository.api.PutItem(contextValue, &dynamodb.PutItemInput{
		TableName: aws.String(repository.table),
		Item:      item,
	})
	return returnedError
}

// ListByUser Query user_id = :u AND record_key BETWEEN :from AND :to，自動翻頁
func (repository *UsageRecordRepository) ListByUser(contextValue context.Context, userID string, from, to time.Time) (_ []core.UsageRecord, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	input := &dynamodb.QueryInput{
		TableName:              aws.String(repository.table),
		KeyConditionExpression: aws.String("user_id = :u AND record_key BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u":    &types.AttributeValueMemberS{Value: userID},
			":from": &types.AttributeValueMemberS{Value: fmt.Sprintf("%013d#", from.UnixMilli())},
			// '~' 大於 request id 可能出現的字元
			":to": &types.AttributeValueMemberS{Value: fmt.Sprintf("%013d#~", to.UnixMilli())},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var records []core.UsageRecord
	paginator := dynamodb.NewQueryPaginator(repository.api, input)
	for paginator.HasMorePages() {
		page, pageError := paginator.NextPage(contextValue)
		if pageError != nil {
			returnedError = pageError
			return nil, returnedError
		}
		var items []usageItem
		if unmarshalError := attributevalue.UnmarshalListOfMaps(page.Items, &items); unmarshalError != nil {
			returnedError = unmarshalError
			return nil, returnedError
		}
		for _, item := range items {
			records = append(records, item.toCore())
		}
	}
	return records, nil
}

func (repository *UsageRecordRepository) HasRecords(contextValue context.Context, userID string) (bool, error) {
	out, err := repository.api.Query(contextValue, &dynamodb.QueryInput{
		TableName:              aws.String(repository.table),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return len(out.Items) > 0, nil
}

func (repository *UsageRecordRepository) Ping(contextValue context.Context) error {
	_, err := repository.api.DescribeTable(contextValue, &dynamodb.DescribeTableInput{
		TableName: aws.String(repository.table),
	})
	return err
}

func (repository *UsageRecordRepository) Backend() core.DatabaseType {
	return core.DynamoDB
}

func (item usageItem) toCore() core.UsageRecord {
	return core.UsageRecord{
		UserID:                 item.UserID,
		Timestamp:              time.UnixMilli(item.TimestampMs).UTC(),
		RequestID:              item.RequestID,
		RequestType:            item.RequestType,
		ModelID:                item.ModelID,
		InputTokens:            item.InputTokens,
		OutputTokens:           item.OutputTokens,
		ResponseTimeMs:         item.ResponseTimeMs,
		ContentFilterTriggered: item.ContentFilterTriggered,
		Outcome:                core.UsageOutcome(item.Outcome),
	}
}
