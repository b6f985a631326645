// Package config provides configuration structures and utilities for
// careercrawl. It defines the options for rendering pages, discovering
// careers pages, extracting job listings and writing reports, and the
// per-site YAML configuration file.
package config
