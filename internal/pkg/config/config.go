package config

import (
	"errors"
	"strings"
	"time"

	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/spf13/viper"
)

const envPrefix = "ZSTATS"

var (
	defaultYears     = []int{2019, 2020, 2021, 2022, 2023}
	defaultProvinces = []string{
		"Central", "Copperbelt", "Eastern", "Luapula", "Lusaka",
		"Muchinga", "Northern", "North-Western", "Southern", "Western",
	}
	defaultCropRegions = []string{"Southern", "Eastern", "Central", "Lusaka", "Copperbelt"}
	defaultCrops       = []string{"Maize", "Soybeans", "Wheat"}
)

// SetDefaults registers default values for every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(constants.ViperServerAddrKey, ":8080")
	v.SetDefault(constants.ViperCORSOriginsKey, []string{"http://localhost:3000"})
	v.SetDefault(constants.ViperRequestTimeout, 30*time.Second)
	v.SetDefault(constants.ViperLogLevelKey, "info")
	v.SetDefault(constants.ViperLogDevelKey, false)
	v.SetDefault(constants.ViperTokenTTLKey, 24*time.Hour)
	v.SetDefault(constants.ViperStorageRootKey, "./data/storage")
	v.SetDefault(constants.ViperStorageURLKey, "http://localhost:8080/storage")
	v.SetDefault(constants.ViperYearsKey, defaultYears)
	v.SetDefault(constants.ViperProvincesKey, defaultProvinces)
	v.SetDefault(constants.ViperCropRegionsKey, defaultCropRegions)
	v.SetDefault(constants.ViperCropsKey, defaultCrops)
	v.SetDefault(constants.ViperImportRetriesKey, 10)
	v.SetDefault(constants.ViperImportCronKey, "")
	v.SetDefault(constants.ViperCDFYearKey, 0)
}

// Load reads the optional config file and environment into the global viper.
// A missing file is not an error; a malformed one is.
func Load(path string) error {
	v := viper.GetViper()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			return nil
		}
		return err
	}

	return nil
}

// Domains are the externally enumerated orderings used for default-fill.
type Domains struct {
	Years       []int
	Provinces   []string
	CropRegions []string
	Crops       []string
}

func LoadDomains(v *viper.Viper) Domains {
	return Domains{
		Years:       v.GetIntSlice(constants.ViperYearsKey),
		Provinces:   v.GetStringSlice(constants.ViperProvincesKey),
		CropRegions: v.GetStringSlice(constants.ViperCropRegionsKey),
		Crops:       v.GetStringSlice(constants.ViperCropsKey),
	}
}

// Importer holds the importer section of the configuration.
type Importer struct {
	CDFURL         string
	CropRankingURL string
	CDFProvinces   map[string]string
	CDFYear        int
	MaxRetries     uint64
	Cron           string
}

// LoadImporter reads the import.* keys. A zero CDF year falls back to the
// latest configured domain year.
func LoadImporter(v *viper.Viper) Importer {
	year := v.GetInt(constants.ViperCDFYearKey)
	if year == 0 {
		for _, y := range LoadDomains(v).Years {
			if y > year {
				year = y
			}
		}
	}

	return Importer{
		CDFURL:         v.GetString(constants.ViperCDFURLKey),
		CropRankingURL: v.GetString(constants.ViperCropRankingURL),
		CDFProvinces:   v.GetStringMapString(constants.ViperCDFProvincesKey),
		CDFYear:        year,
		MaxRetries:     v.GetUint64(constants.ViperImportRetriesKey),
		Cron:           v.GetString(constants.ViperImportCronKey),
	}
}
