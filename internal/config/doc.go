// Package config loads the polyglot daemon configuration from the environment
// and an optional .env file.
package config
