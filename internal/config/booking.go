package config

import "time"

type SearchConfig struct {
	// RadiusMeters bounds the geo query around the geocoded pickup point.
	RadiusMeters float64 `yaml:"radius_meters"`
}

type BookingConfig struct {
	EnforceOverlapOnWrite bool          `yaml:"enforce_overlap_on_write"`
	LockTTL               time.Duration `yaml:"lock_ttl"`
	DepositRate           float64       `yaml:"deposit_rate"`
}

func loadSearchConfig() *SearchConfig {
	return &SearchConfig{
		RadiusMeters: getEnvAsFloat64("SEARCH_RADIUS_METERS", 20000),
	}
}

func loadBookingConfig() *BookingConfig {
	return &BookingConfig{
		EnforceOverlapOnWrite: getEnvAsBool("BOOKING_ENFORCE_OVERLAP_ON_WRITE", true),
		LockTTL:               getEnvAsDuration("BOOKING_LOCK_TTL", 10*time.Second),
		DepositRate:           getEnvAsFloat64("DEPOSIT_RATE", 0.25),
	}
}
