package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// GetConfig returns the effective configuration
func (s *Server) GetConfig() types.ServerConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetClientSettings replaces the settings sent by the client and rebuilds
// the effective configuration. Invalid settings leave everything unchanged.
func (s *Server) SetClientSettings(settings json.RawMessage) error {
	if _, err := types.DefaultConfig().Overlay(settings); err != nil {
		return err
	}

	s.configMu.Lock()
	s.clientSettings = settings
	s.rebuildConfigLocked()
	s.configMu.Unlock()

	s.applyLogLevel()
	return nil
}

// LoadProjectConfig reads the project configuration file from the
// workspace root and rebuilds the effective configuration. A missing file
// clears any previously loaded project settings.
func (s *Server) LoadProjectConfig() error {
	root := s.RootPath()
	if root == "" {
		return nil
	}

	settings, path, err := ReadProjectConfig(root)
	if err != nil {
		return err
	}
	if path != "" {
		log.Info("Loaded project configuration from %s", path)
	}

	s.configMu.Lock()
	s.projectSettings = settings
	s.rebuildConfigLocked()
	s.configMu.Unlock()

	s.applyLogLevel()
	return nil
}

// rebuildConfigLocked layers defaults, project settings and client
// settings, in that order. configMu must be held.
func (s *Server) rebuildConfigLocked() {
	config := types.DefaultConfig()

	if next, err := config.Overlay(s.projectSettings); err != nil {
		log.Warn("Ignoring project configuration: %v", err)
	} else {
		config = next
	}

	if next, err := config.Overlay(s.clientSettings); err != nil {
		log.Warn("Ignoring client configuration: %v", err)
	} else {
		config = next
	}

	s.config = config
}

func (s *Server) applyLogLevel() {
	level, err := log.ParseLevel(s.GetConfig().LogLevel)
	if err != nil {
		log.Warn("%v", err)
	}
	log.SetLevel(level)
}

// ReadProjectConfig finds the first of types.ProjectConfigFiles in rootPath and
// returns its contents as JSON, along with the file's path.
// It returns nil and an empty path when there is no such file.
func ReadProjectConfig(rootPath string) (json.RawMessage, string, error) {
	for _, name := range types.ProjectConfigFiles {
		path := filepath.Join(rootPath, name)

		data, err := os.ReadFile(path) //nolint:gosec // G304: project config at the workspace root
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var settings json.RawMessage
		if filepath.Ext(name) == ".json" {
			settings, err = jsonConfig(data)
		} else {
			settings, err = yamlConfig(data)
		}
		if err != nil {
			return nil, path, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return settings, path, nil
	}
	return nil, "", nil
}

// jsonConfig accepts JSON with comments and trailing commas
func jsonConfig(data []byte) (json.RawMessage, error) {
	data = jsonc.ToJSON(data)

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return json.Marshal(config)
}

func yamlConfig(data []byte) (json.RawMessage, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		// Empty file
		return nil, nil
	}
	return json.Marshal(config)
}
