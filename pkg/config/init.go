package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# DittoCMIS Configuration File
#
# Every value can be overridden with an environment variable:
# DITTOCMIS_<SECTION>_<KEY>, e.g. DITTOCMIS_LOGGING_LEVEL=DEBUG.
#
# store.type selects the resource store (memory, badger); content.type the
# content store (memory, filesystem, s3). Only the section matching the
# selected type is used.

`

// sectionComments are written above each top-level section.
var sectionComments = map[string]string{
	"logging":    "Log output: level DEBUG|INFO|WARN|ERROR, format text|json, output stdout|stderr|<file>",
	"server":     "CMIS browser binding",
	"repository": "The repository exposed to clients",
	"store":      "Resource store holding folders, documents, relations and access control",
	"content":    "Content store holding document bodies",
	"auth":       "Credential checking",
	"users":      "Users registered at startup; groups are created as needed",
	"metrics":    "Prometheus endpoint (/metrics, /healthz)",
	"telemetry":  "OpenTelemetry tracing over OTLP/HTTP",
	"gc":         "Background removal of document bodies no document references",
}

// InitConfig writes the default configuration to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes the default configuration to path.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	// 0600: the file carries user passwords
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML with the file header and a
// comment above each top-level section.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	// node is a mapping of alternating key and value nodes
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if comment, ok := sectionComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
