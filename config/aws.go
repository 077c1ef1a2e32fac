package config

type AWS struct {
	Region string `mapstructure:"REGION" json:"region" yaml:"region"`
	// 本地開發可指向 localstack
	Endpoint string `mapstructure:"ENDPOINT" json:"endpoint" yaml:"endpoint"`
}
