// Package config loads application settings with viper from defaults, an
// optional YAML file, .env files, HANZI_-prefixed environment variables and
// command-line flags, and validates them with go-playground/validator.
package config
