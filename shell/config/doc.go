// Package config loads the service configuration from the environment and builds
// the database connections and OpenTelemetry providers from it.
//
// A .env file in the working directory is loaded first if present, real environment
// variables take precedence over its values.
package config
