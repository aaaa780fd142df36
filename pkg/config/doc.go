// Package config loads a node's on-disk YAML configuration and layers
// cobra command-line flags on top of it, the way cmd/warren's apply
// command reads YAML resources with gopkg.in/yaml.v3.
package config
