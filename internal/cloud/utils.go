// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud services.
// This file contains the hierarchical configuration loader.
//
// Functions:
//   - LoadConfig: loads `.env` (dotenv) into the process environment, then
//     decodes the base TOML file and overlays the runtime specific one
//     (e.g. configs/.env.toml then configs/.env.local.toml).
package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	DotEnvFile          = ".env"             // Optional dotenv file read before the TOML files.
	EnvConfigFilePrefix = "SCOPE_CONFIG_DIR" // Directory holding the TOML files.
	EnvConfigRuntime    = "SCOPE_RUNTIME"    // Runtime overlay name, e.g. "local", "test", "prod".
	DefaultRuntime      = "local"
)

// fileExists reports whether a file or directory exists at path.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime specific configuration file paths
// derived from the environment.
func ConfigFiles() (base string, overlay string) {
	dir := os.Getenv(EnvConfigFilePrefix)
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = DefaultRuntime
	}
	base = filepath.Join(dir, ConfigFileBaseName+ConfigFileExtension)
	overlay = filepath.Join(dir, ConfigFileBaseName+ConfigSeparator+runtime+ConfigFileExtension)
	return base, overlay
}

// LoadConfig populates baseConfig (a pointer to a struct with toml tags)
// from the base file and then the runtime overlay. Missing files are
// skipped; a file that exists but does not decode is an error.
func LoadConfig(baseConfig interface{}) error {
	if fileExists(DotEnvFile) {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
	}

	base, overlay := ConfigFiles()
	for _, name := range []string{base, overlay} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("configuration loaded", "file", name)
	}
	return nil
}
