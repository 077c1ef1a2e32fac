package telemetry

import (
	"promptgate/config"
	"promptgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct，未啟用時所有欄位皆為 nil，呼叫端需自行判斷
type Metric struct {
	HttpRequestsTotal      *prometheus.CounterVec
	HttpRequestDuration    *prometheus.HistogramVec
	GenerationTotal        *prometheus.CounterVec
	GenerationDuration     *prometheus.HistogramVec
	TokensTotal            *prometheus.CounterVec
	FilterEventsTotal      *prometheus.CounterVec
	UsageRecordsTotal      *prometheus.CounterVec
	UsageRecordFailedTotal *prometheus.CounterVec
	config                 *config.Configuration
}

// NewMetric 建立所有指標並註冊到預設 registry
func NewMetric(config *config.Configuration) *Metric {
	return NewMetricWithRegisterer(config, prometheus.DefaultRegisterer)
}

func NewMetricWithRegisterer(config *config.Configuration, registerer prometheus.Registerer) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	factory := promauto.With(registerer)
	name := func(metric core.MetricName) string {
		return config.App.Name + "_" + string(metric)
	}
	return &Metric{
		config: config,
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name(core.MetricHttpRequestDuration),
				Help:    "API request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		GenerationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricGenerationTotal),
				Help: "Generation pipeline results by provider and outcome",
			},
			labelNames(core.MetricLabelProvider, core.MetricLabelOutcome),
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name(core.MetricGenerationDuration),
				Help:    "Upstream generation latency (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelProvider),
		),
		TokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricTokensTotal),
				Help: "Tokens consumed, split by input/output",
			},
			labelNames(core.MetricLabelDirection),
		),
		FilterEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricFilterEventsTotal),
				Help: "Content filter invocations",
			},
			labelNames(core.MetricLabelStage, core.MetricLabelResult, core.MetricLabelCategory),
		),
		UsageRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricUsageRecordsTotal),
				Help: "Usage record writes",
			},
			labelNames(core.MetricLabelBackend, core.MetricLabelResult),
		),
		UsageRecordFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: name(core.MetricUsageRecordFailedTotal),
				Help: "Usage records dropped after a store failure",
			},
			labelNames(core.MetricLabelOutcome),
		),
	}
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
