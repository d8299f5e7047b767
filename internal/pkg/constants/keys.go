package constants

// Ключи конфигурации viper.
const (
	ViperSecretKey        = "auth.secret"
	ViperTokenTTLKey      = "auth.token_ttl"
	ViperServerAddrKey    = "server.addr"
	ViperCORSOriginsKey   = "server.cors_origins"
	ViperRequestTimeout   = "server.request_timeout"
	ViperLogLevelKey      = "log.level"
	ViperLogDevelKey      = "log.development"
	ViperDatabaseDSNKey   = "database.dsn"
	ViperStorageRootKey   = "storage.root"
	ViperStorageURLKey    = "storage.public_url"
	ViperYearsKey         = "domains.years"
	ViperProvincesKey     = "domains.provinces"
	ViperCropsKey         = "domains.crops"
	ViperCropRegionsKey   = "domains.crop_regions"
	ViperCDFURLKey        = "import.cdf_url"
	ViperCropRankingURL   = "import.crop_ranking_url"
	ViperCDFProvincesKey  = "import.cdf_provinces"
	ViperCDFYearKey       = "import.cdf_year"
	ViperImportCronKey    = "import.cron"
	ViperImportRetriesKey = "import.max_retries"
)

const (
	CookieKeyAuthToken   = "auth_token"
	CookieKeySecretToken = "secret_token"
	HeaderAuthorization  = "Authorization"
)

const (
	CtxKeyUserID = "user_id"
	CtxKeyRole   = "role"
)

// Названия наборов данных.
const (
	DatasetCDF            = "cdf"
	DatasetCropProduction = "crop_production"
	DatasetLivestock      = "livestock"
	DatasetRainfall       = "rainfall"
	DatasetHealth         = "health"
	DatasetMining         = "mining"
	DatasetEconomy        = "economy"
)

var Datasets = []string{
	DatasetCDF, DatasetCropProduction, DatasetLivestock, DatasetRainfall,
	DatasetHealth, DatasetMining, DatasetEconomy,
}

func IsDataset(name string) bool {
	for _, d := range Datasets {
		if d == name {
			return true
		}
	}
	return false
}

// Хранилища файлов.
const (
	StorageAreaMedia  = "media"
	StorageAreaAssets = "assets"
)

// ValueAll means "no constraint" in filter criteria.
const ValueAll = "all"
