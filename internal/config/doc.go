// Package config defines the application's configuration structures and
// loads them from the environment and optional config files using viper,
// validating the result with go-playground/validator.
package config
