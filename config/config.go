package config

type Configuration struct {
	App        App             `mapstructure:"APP" json:"app" yaml:"app"`
	Log        Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	Redis      Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	MongoDB    MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	SQL        SQL             `mapstructure:"SQL" json:"sql" yaml:"sql"`
	AWS        AWS             `mapstructure:"AWS" json:"aws" yaml:"aws"`
	Telemetry  TelemetryConfig `mapstructure:"TELEMETRY" json:"telemetry" yaml:"telemetry"`
	Fluentd    Fluentd         `mapstructure:"FLUENTD" json:"fluentd" yaml:"fluentd"`
	Generation Generation      `mapstructure:"GENERATION" json:"generation" yaml:"generation"`
	Filter     Filter          `mapstructure:"FILTER" json:"filter" yaml:"filter"`
	Usage      Usage           `mapstructure:"USAGE" json:"usage" yaml:"usage"`
}
