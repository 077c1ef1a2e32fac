package config

type SQL struct {
	// postgres / sqlite
	Driver string `mapstructure:"DRIVER" json:"driver" yaml:"driver"`
	DSN    string `mapstructure:"DSN" json:"dsn" yaml:"dsn"`
}
