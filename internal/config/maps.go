package config

import "time"

const (
	GeocoderLocationIQ = "locationiq"
	GeocoderGoogle     = "google"
	GeocoderMapbox     = "mapbox"
)

type MapsConfig struct {
	Provider   string            `yaml:"provider"`
	Timeout    time.Duration     `yaml:"timeout"`
	CacheTTL   time.Duration     `yaml:"cache_ttl"`
	LocationIQ *LocationIQConfig `yaml:"location_iq"`
	GoogleMaps *GoogleMapsConfig `yaml:"google_maps"`
	Mapbox     *MapboxConfig     `yaml:"mapbox"`
}

type LocationIQConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

type MapboxConfig struct {
	AccessToken string `yaml:"access_token"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		Provider: getEnv("GEOCODER_PROVIDER", GeocoderLocationIQ),
		Timeout:  getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),
		CacheTTL: getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		LocationIQ: &LocationIQConfig{
			APIKey:  getEnv("LOCATION_IQ_KEY", ""),
			BaseURL: getEnv("LOCATION_IQ_BASE_URL", "https://us1.locationiq.com"),
		},
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Mapbox: &MapboxConfig{
			AccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
		},
	}
}
