package config

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "GLOOVA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
