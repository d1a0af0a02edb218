package types

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SettingsKeys are the keys client settings may be nested under, in order
// of preference
var SettingsKeys = []string{"embeddedLanguageServer", "embedded-language-server"}

// ProjectConfigFiles are the project configuration file names looked up at
// the workspace root, in order of preference
var ProjectConfigFiles = []string{".embedlsrc.yaml", ".embedlsrc.yml", ".embedlsrc.json"}

// IsProjectConfigFile reports whether path is one of ProjectConfigFiles
// directly inside rootPath
func IsProjectConfigFile(path, rootPath string) bool {
	if path == "" || rootPath == "" {
		return false
	}
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(rootPath) {
		return false
	}
	return slices.Contains(ProjectConfigFiles, filepath.Base(path))
}

// ServerConfig represents the server configuration
type ServerConfig struct {
	// Languages are the language IDs whose documents are treated as markup
	Languages []string `json:"languages"`

	// Include are doublestar globs marking files as markup regardless of
	// their language ID
	Include []string `json:"include"`

	// Exclude are doublestar globs for files that are never analyzed
	Exclude []string `json:"exclude"`

	// Diagnostics enables syntax diagnostics for embedded CSS and JavaScript
	Diagnostics bool `json:"diagnostics"`

	// Colors enables document colors in embedded CSS
	Colors bool `json:"colors"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Languages:   []string{"html"},
		Include:     []string{"**/*.html", "**/*.htm"},
		Exclude:     []string{"**/node_modules/**"},
		Diagnostics: true,
		Colors:      true,
		LogLevel:    "info",
	}
}

// Overlay returns a copy of c with the keys present in raw applied on top.
// Keys absent from raw keep their current value.
func (c ServerConfig) Overlay(raw json.RawMessage) (ServerConfig, error) {
	if len(raw) == 0 {
		return c, nil
	}
	next := c
	// Slices are replaced wholesale, never merged
	next.Languages = slices.Clone(c.Languages)
	next.Include = slices.Clone(c.Include)
	next.Exclude = slices.Clone(c.Exclude)
	if err := json.Unmarshal(raw, &next); err != nil {
		return c, fmt.Errorf("failed to apply settings: %w", err)
	}
	return next, nil
}

// ParseSettings extracts this server's section from a client settings
// object, such as initializationOptions or a didChangeConfiguration payload.
// A settings object without one of SettingsKeys is used as-is when it
// looks like a bare config; otherwise nil is returned.
func ParseSettings(settings any) (json.RawMessage, error) {
	if settings == nil {
		return nil, nil
	}

	settingsMap, ok := settings.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings is not a map")
	}

	var ours any
	for _, key := range SettingsKeys {
		if val, exists := settingsMap[key]; exists {
			ours = val
			break
		}
	}
	if ours == nil {
		if !looksLikeConfig(settingsMap) {
			return nil, nil
		}
		ours = settingsMap
	}

	if _, ok := ours.(map[string]any); !ok {
		return nil, fmt.Errorf("settings section must be an object")
	}

	data, err := json.Marshal(ours)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

func looksLikeConfig(m map[string]any) bool {
	for _, key := range []string{"languages", "include", "exclude", "diagnostics", "colors", "logLevel"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// IsMarkup reports whether a document should get embedded-language features.
// path is the document's file system path and rootPath the workspace root;
// either may be empty.
func (c ServerConfig) IsMarkup(languageID, path, rootPath string) bool {
	rel := relativeSlashPath(path, rootPath)
	if rel != "" {
		for _, pattern := range c.Exclude {
			if matchGlob(pattern, rel) {
				return false
			}
		}
	}

	if slices.Contains(c.Languages, languageID) {
		return true
	}

	if rel == "" {
		return false
	}
	for _, pattern := range c.Include {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// relativeSlashPath returns path relative to root with forward slashes and
// no leading slash, for glob matching
func relativeSlashPath(path, root string) string {
	if path == "" {
		return ""
	}
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}
