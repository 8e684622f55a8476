package config

const (
	// EnvPrefix namespaces every environment variable the platform reads.
	EnvPrefix = "ACADEMY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ACADEMY_DB_DSN"
	EnvDBHost = "ACADEMY_DB_HOST"
	EnvDBUser = "ACADEMY_DB_USER"
	EnvDBName = "ACADEMY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
