// Package config loads typed configuration structs from environment
// variables, with optional .env support for development.
//
// Values are cached per struct type: the environment is read once and every
// later Load of the same type returns the same value, which keeps test and
// startup behavior deterministic.
package config
