// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// RedisAddr is the address of the Redis instance holding all records.
	RedisAddr string

	// PasswordSalt is the process-wide secret mixed into password digests.
	// It must match the value the existing user records were hashed with.
	PasswordSalt string

	// SnippetLen caps the text copied into a self-post's placeholder url.
	SnippetLen int

	// DedupWindow bounds url deduplication as a Go duration string
	// ("48h"); empty or "0" deduplicates forever.
	DedupWindow string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.RedisAddr, "r", "localhost:6379", "redis address")
	flag.StringVar(&options.PasswordSalt, "salt", "", "password salt")
	flag.IntVar(&options.SnippetLen, "snippet", 0, "self-post snippet length")
	flag.StringVar(&options.DedupWindow, "dedup-window", "", "url dedup window, e.g. 48h (empty: forever)")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	// A local .env file seeds the environment before it is consulted.
	_ = godotenv.Load()

	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		options.RedisAddr = redisAddress
	}
	if salt := os.Getenv("PASSWORD_SALT"); salt != "" {
		options.PasswordSalt = salt
	}
	if window := os.Getenv("DEDUP_WINDOW"); window != "" {
		options.DedupWindow = window
	}

	return options
}
