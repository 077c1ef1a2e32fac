package config

type Usage struct {
	// mongodb / redis / dynamodb / sql / memory
	Backend                string `mapstructure:"BACKEND" json:"backend" yaml:"backend"`
	AnonymousUserID        string `mapstructure:"ANONYMOUS_USER_ID" json:"anonymousUserId" yaml:"anonymousUserId"`
	DefaultDays            int    `mapstructure:"DEFAULT_DAYS" json:"defaultDays" yaml:"defaultDays"`
	MaxDays                int    `mapstructure:"MAX_DAYS" json:"maxDays" yaml:"maxDays"`
	NotFoundForUnknownUser bool   `mapstructure:"NOT_FOUND_FOR_UNKNOWN_USER" json:"notFoundForUnknownUser" yaml:"notFoundForUnknownUser"`
	WriteTimeoutMs         int64  `mapstructure:"WRITE_TIMEOUT_MS" json:"writeTimeoutMs" yaml:"writeTimeoutMs"`
	ProbeSpec              string `mapstructure:"PROBE_SPEC" json:"probeSpec" yaml:"probeSpec"`
	DynamoDBTable          string `mapstructure:"DYNAMODB_TABLE" json:"dynamodbTable" yaml:"dynamodbTable"`
	RedisKeyPrefix         string `mapstructure:"REDIS_KEY_PREFIX" json:"redisKeyPrefix" yaml:"redisKeyPrefix"`
}
