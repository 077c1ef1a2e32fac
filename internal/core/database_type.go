package core

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseType defines the usage store backend
type DatabaseType string

const (
	Mongo    DatabaseType = "mongodb"
	Redis    DatabaseType = "redis"
	DynamoDB DatabaseType = "dynamodb"
	SQL      DatabaseType = "sql"
	Memory   DatabaseType = "memory"
)

// Databases contains all supported usage store backends
var Databases = []DatabaseType{Mongo, Redis, DynamoDB, SQL, Memory}

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string
type SQLTable string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoDBPromptGate MongoDatabaseName = "promptgate"
)

// MongoDB collections
const (
	MongoCollectionUsageRecords MongoCollection = "usage_records"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyUsage      RedisKey = "usage"      // 每位使用者一個 sorted set
	RedisKeyServerName RedisKey = "promptgate" // 伺服器名稱
)

// ─── SQL ───────────────────────────────────────────────────────────────────────

const (
	SQLTableUsageRecords SQLTable = "usage_records"
)

// ─── Fluentd ───────────────────────────────────────────────────────────────────

const (
	FluentdRequest       FluentdSubTag = "request_log"
	FluentdResponse      FluentdSubTag = "response_log"
	FluentdUsage         FluentdSubTag = "usage_log"
	FluentdSecurityEvent FluentdSubTag = "security_event"
)
