package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"

	"github.com/joho/godotenv"
)

const (
	// DefaultHost is the interface the HTTP listener binds to.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the default HTTP server port.
	DefaultPort = "8000"

	// DefaultIndexFile is resolved against the working directory on every request.
	DefaultIndexFile = "index.html"

	// DefaultDatabaseURL is empty; hit recording stays off unless a URL is provided.
	DefaultDatabaseURL = ""

	// DefaultEnvFile is read from the working directory at startup when present.
	DefaultEnvFile = ".env"
)

// Addr joins host and port into a listen address, falling back to the defaults
// for empty values.
func Addr(host, port string) string {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return net.JoinHostPort(host, port)
}

// LoadDotEnv loads variables from the given env files (DefaultEnvFile when none
// are given) into the process environment. Variables already set are left
// untouched and missing files are skipped. It returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{DefaultEnvFile}
	}

	var loaded []string
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	return loaded, nil
}
