// SPDX-License-Identifier: MPL-2.0

// Package config loads the confrun application configuration: a CUE file
// validated against an embedded schema, layered over defaults and
// CONFRUN_* environment variables with Viper.
package config
