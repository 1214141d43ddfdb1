package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "memalerts"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MEMALERTS_DB_DSN"
	EnvDBHost = "MEMALERTS_DB_HOST"
	EnvDBUser = "MEMALERTS_DB_USER"
	EnvDBName = "MEMALERTS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
