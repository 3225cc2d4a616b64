// Package config provides configuration structures and utilities for drawtopia.
// It defines viewport, palette, brush and measurement settings, the
// .drawtopia YAML file, and report and journal preferences.
package config
