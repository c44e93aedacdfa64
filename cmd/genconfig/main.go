// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Genconfig generates the example configuration files under deploy/ from the
built-in defaults. Run it after changing the Config struct so the examples
stay in sync: go run ./cmd/genconfig.
*/
package main

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"

	"codeberg.org/htmlweave/htmlweave/config"
	"codeberg.org/htmlweave/htmlweave/core/audit"
)

const (
	outputDir      = "deploy"
	envOutputFile  = "deploy/.env.example"
	yamlOutputFile = "deploy/config.yaml.example"
	filePerm       = 0o644

	envFileHeader = `# htmlweave configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	yamlFileHeader = `# htmlweave configuration (via configuration file)
#
# Copy this file to config.yaml and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.
`
)

// essentialEnvVars are written uncommented so a fresh deployment sees the
// settings it most likely wants to change.
var essentialEnvVars = []string{"HTMLWEAVE_ATTRIBUTE", "HTMLWEAVE_TIMEOUT"}

func main() {
	audit.SetDefaultLogger()

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		log.Fatal().Err(err).Str("path", outputDir).Msg("Failed to create output directory")
	}

	generateEnvFile()
	generateYAMLFile()
}

// generateEnvFile generates the deploy/.env.example file.
func generateEnvFile() {
	cfg := config.Default()

	var sb strings.Builder
	sb.WriteString(envFileHeader)

	val := reflect.ValueOf(cfg)
	typ := val.Type()

	// Iterate over the top-level sections.
	for i := range typ.NumField() {
		structField := typ.Field(i)
		structValue := val.Field(i)

		if structValue.Kind() != reflect.Struct || structField.Name == "Build" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", structField.Name)
		writeEnvFields(&sb, structValue)
		sb.WriteString("\n")
	}

	if err := os.WriteFile(envOutputFile, []byte(sb.String()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", envOutputFile).Msg("Failed to write .env.example file")
	}

	log.Info().Str("path", envOutputFile).Msg("Successfully generated .env.example")
}

// writeEnvFields emits one line per env-tagged field, descending into nested
// sections like Widgets.Carousel.
func writeEnvFields(sb *strings.Builder, structValue reflect.Value) {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		value := structValue.Field(i)

		tag, ok := field.Tag.Lookup("env")
		if !ok {
			if value.Kind() == reflect.Struct {
				writeEnvFields(sb, value)
			}

			continue
		}

		envVarName := strings.Split(tag, ",")[0]

		switch {
		case slices.Contains(essentialEnvVars, envVarName):
			fmt.Fprintf(sb, "%s=\"%v\"\n", envVarName, value.Interface())
		case value.Kind() == reflect.Slice || (value.Kind() == reflect.String && value.Len() == 0):
			// Omit the value to prompt user input.
			fmt.Fprintf(sb, "# %s=\n", envVarName)
		default:
			fmt.Fprintf(sb, "# %s=%v\n", envVarName, value.Interface())
		}
	}
}

// generateYAMLFile generates the deploy/config.yaml.example file.
func generateYAMLFile() {
	cfg := config.Default()

	var yamlContent strings.Builder

	encoderOpts := []yaml.EncodeOption{
		config.GetDurationEncoderOption(),
		yaml.Indent(2),
	}
	if err := yaml.NewEncoder(&yamlContent, encoderOpts...).Encode(&cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal config to YAML")
	}

	var sb strings.Builder
	sb.WriteString(yamlFileHeader)

	// Process the marshaled YAML line-by-line to create a clean template.
	for line := range strings.SplitSeq(yamlContent.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Top-level keys (e.g., "loader:") are treated as section headers.
		if !strings.HasPrefix(line, " ") {
			fmt.Fprintf(&sb, "\n%s\n", line)

			continue
		}

		// By default, comment out the line.
		indentSize := len(line) - len(strings.TrimLeft(line, " "))
		fmt.Fprintf(&sb, "%s# %s\n", strings.Repeat(" ", indentSize), trimmed)
	}

	if err := os.WriteFile(yamlOutputFile, []byte(sb.String()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", yamlOutputFile).Msg("Failed to write config file")
	}

	log.Info().Str("path", yamlOutputFile).Msg("Successfully generated config.yaml.example")
}
