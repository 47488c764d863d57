package config

const (
	EnvPrefix = "smartgement"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SMARTGEMENT_DB_DSN"
	EnvDBHost = "SMARTGEMENT_DB_HOST"
	EnvDBUser = "SMARTGEMENT_DB_USER"
	EnvDBName = "SMARTGEMENT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
