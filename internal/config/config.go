package config

import (
	"cmp"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultAPIURL  = "http://localhost:8080/api"
	defaultTimeout = 15 * time.Second
)

type Config struct {
	APIURL   string
	Timeout  time.Duration
	TokenDir string
	Debug    bool
}

func ReadConfig() (*Config, error) {
	var apiURL, tokenDir string
	var timeout time.Duration
	var debug bool
	flag.StringVar(&apiURL, "api", defaultAPIURL, "base URL of the bookstore API")
	flag.DurationVar(&timeout, "timeout", defaultTimeout, "request timeout")
	flag.StringVar(&tokenDir, "token-dir", "", "directory for the persisted auth token")
	flag.BoolVar(&debug, "debug", false, "flag to set Debug logger level")
	flag.Parse()

	apiURL = cmp.Or(os.Getenv("STOREFRONT_API_URL"), apiURL)
	if t := os.Getenv("STOREFRONT_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return nil, err
		}
		timeout = d
	}
	if d := os.Getenv("STOREFRONT_DEBUG"); d != "" {
		b, err := strconv.ParseBool(d)
		if err != nil {
			return nil, err
		}
		debug = b
	}
	tokenDir = cmp.Or(os.Getenv("STOREFRONT_TOKEN_DIR"), tokenDir)
	if tokenDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		tokenDir = filepath.Join(base, "bookly-storefront")
	}
	return &Config{
		APIURL:   apiURL,
		Timeout:  timeout,
		TokenDir: tokenDir,
		Debug:    debug,
	}, nil
}
