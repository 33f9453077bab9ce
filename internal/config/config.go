// Package config loads the handful of settings the HTTP server and CLI
// need to point at an on-disk index and tune a couple of
// implementation-defined constants, from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/wizenheimer/lexdex/internal/rank"
)

// Config is the engine's runtime configuration.
type Config struct {
	DictFile     string
	PostingsFile string
	MetadataFile string

	HTTPAddr string
	CacheTTL time.Duration

	Rank rank.Config
}

// Default returns the configuration used when no environment variable
// overrides a field.
func Default() Config {
	return Config{
		DictFile:     "dictionary.txt",
		PostingsFile: "postings.txt",
		MetadataFile: "",
		HTTPAddr:     ":8080",
		CacheTTL:     time.Hour,
		Rank:         rank.DefaultConfig(),
	}
}

// FromEnv starts from Default and overrides any field whose environment
// variable is set. Recognized variables:
//
//	LEXDEX_DICT_FILE, LEXDEX_POSTINGS_FILE, LEXDEX_METADATA_FILE,
//	LEXDEX_HTTP_ADDR, LEXDEX_CACHE_TTL_SECONDS,
//	LEXDEX_DATE_BOOST_REFERENCE_YEAR
func FromEnv() Config {
	cfg := Default()

	if v, ok := os.LookupEnv("LEXDEX_DICT_FILE"); ok {
		cfg.DictFile = v
	}
	if v, ok := os.LookupEnv("LEXDEX_POSTINGS_FILE"); ok {
		cfg.PostingsFile = v
	}
	if v, ok := os.LookupEnv("LEXDEX_METADATA_FILE"); ok {
		cfg.MetadataFile = v
	}
	if v, ok := os.LookupEnv("LEXDEX_HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("LEXDEX_CACHE_TTL_SECONDS"); ok {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.CacheTTL = time.Duration(secs) * time.Second
		}
	}
	if v, ok := os.LookupEnv("LEXDEX_DATE_BOOST_REFERENCE_YEAR"); ok {
		if year, err := strconv.Atoi(v); err == nil {
			cfg.Rank.DateBoostReferenceYear = year
		}
	}

	return cfg
}
