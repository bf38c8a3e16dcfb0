// Package config defines the mreks configuration file and its defaults.
//
// The configuration is read from mreks.yaml, layered over [Default] and then
// over environment overrides. Every value a declaration needs flows from a
// single [Config]; nothing downstream reads the environment.
package config
