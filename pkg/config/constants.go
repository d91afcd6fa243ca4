package config

// EnvPrefix is the envconfig prefix shared by every BookMart binary.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BOOKMART_DB_DSN"
	EnvDBHost = "BOOKMART_DB_HOST"
	EnvDBUser = "BOOKMART_DB_USER"
	EnvDBName = "BOOKMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
