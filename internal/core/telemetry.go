package core

const ContextTraceKey = "telemetry_trace_ctx"
const ContextRequestIDKey = "requestID"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest        TraceSpanName = "http_request"
	SpanLoggerMiddleware   TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware     TraceSpanName = "cors_middleware"
	SpanResponseMiddleware TraceSpanName = "response_middleware"

	SpanValidate       TraceSpanName = "pipeline.validate"
	SpanInputFilter    TraceSpanName = "pipeline.input_filter"
	SpanGenerate       TraceSpanName = "pipeline.generate"
	SpanOutputFilter   TraceSpanName = "pipeline.output_filter"
	SpanRecord         TraceSpanName = "pipeline.record"
	SpanClassifier     TraceSpanName = "filter.classifier"
	SpanUsageSummarize TraceSpanName = "usage.summarize"
	SpanStoreProbe     TraceSpanName = "cron.store_probe"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal      MetricName = "requests_total"
	MetricHttpRequestDuration    MetricName = "request_duration_seconds"
	MetricGenerationTotal        MetricName = "generation_total"
	MetricGenerationDuration     MetricName = "generation_duration_seconds"
	MetricTokensTotal            MetricName = "tokens_total"
	MetricFilterEventsTotal      MetricName = "filter_events_total"
	MetricUsageRecordsTotal      MetricName = "usage_records_total"
	MetricUsageRecordFailedTotal MetricName = "usage_record_failures_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint  MetricLabelName = "endpoint"
	MetricLabelStatus    MetricLabelName = "status"
	MetricLabelReason    MetricLabelName = "reason"
	MetricLabelProvider  MetricLabelName = "provider"
	MetricLabelOutcome   MetricLabelName = "outcome"
	MetricLabelDirection MetricLabelName = "direction"
	MetricLabelStage     MetricLabelName = "stage"
	MetricLabelResult    MetricLabelName = "result"
	MetricLabelCategory  MetricLabelName = "category"
	MetricLabelBackend   MetricLabelName = "backend"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanKind          string `trace:"span.kind"`
	SpanTraceID       string `trace:"span.trace_id"`
	RequestID         string `trace:"http.request.id"`
	HttpStatusCode    int    `trace:"http.response.status_code,omitempty"`
}

type TraceGenerationMeta struct {
	RequestID    string  `trace:"request.id"`
	UserID       string  `trace:"user.id"`
	Provider     string  `trace:"ai.provider"`
	Model        string  `trace:"ai.model,omitempty"`
	MaxTokens    int     `trace:"ai.max_tokens"`
	Temperature  float64 `trace:"ai.temperature"`
	InputTokens  int     `trace:"ai.tokens.input,omitempty"`
	OutputTokens int     `trace:"ai.tokens.output,omitempty"`
	LatencyMs    int64   `trace:"ai.latency_ms,omitempty"`
}

type TraceFilterMeta struct {
	UserID   string `trace:"user.id"`
	Stage    string `trace:"filter.stage"`
	TextLen  int    `trace:"filter.text_length"`
	Passed   bool   `trace:"filter.passed"`
	Layer    string `trace:"filter.layer,omitempty"`
	Category string `trace:"filter.category,omitempty"`
	Severity string `trace:"filter.severity"`
}

type TraceUsageWriteMeta struct {
	Backend   string `trace:"usage.backend"`
	UserID    string `trace:"usage.user_id"`
	RequestID string `trace:"usage.request_id"`
	Outcome   string `trace:"usage.outcome"`
	Triggered bool   `trace:"usage.filter_triggered"`
}

type TraceUsageSummaryMeta struct {
	UserID        string `trace:"usage.user_id"`
	Days          int    `trace:"usage.period_days"`
	RecordCount   int    `trace:"usage.record_count"`
	TotalRequests int    `trace:"usage.total_requests"`
	Status        string `trace:"usage.status"`
}
