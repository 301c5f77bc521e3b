package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const maxScenarioSize = 1 << 20

// Load reads, decodes and validates the scenario at path. The format follows
// the file extension.
func Load(path string) (Scenario, error) {
	logrus.Debug("Loading scenario from: ", path)
	if !isScenarioFile(path) {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	data, err := readFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := unmarshal(path, data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// readFile reads at most maxScenarioSize bytes.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxScenarioSize {
		return nil, fmt.Errorf("scenario file too large: %d bytes (max %d)", info.Size(), maxScenarioSize)
	}
	return io.ReadAll(io.LimitReader(file, maxScenarioSize))
}

// unmarshal decodes data as JSON or YAML depending on the extension of path.
// JSON objects are checked for keys that differ only by case, since
// encoding/json would silently merge them.
func unmarshal(path string, data []byte, v any) error {
	switch {
	case isJSONFile(path):
		if err := detectCaseInsensitiveKeyCollisions(data); err != nil {
			return err
		}
		return json.Unmarshal(data, v)
	case isYAMLFile(path):
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func detectCaseInsensitiveKeyCollisions(data []byte) error {
	var res any
	// Syntax errors are left for json.Unmarshal to report.
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&res); err != nil {
		return nil
	}
	return checkKeys(res, "")
}

func checkKeys(obj any, path string) error {
	switch v := obj.(type) {
	case map[string]any:
		seen := make(map[string]string, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			if first, ok := seen[lower]; ok {
				return fmt.Errorf("case-insensitive key collision at '%s': '%s' and '%s'", joinPath(path, key), key, first)
			}
			seen[lower] = key
			if err := checkKeys(value, joinPath(path, key)); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range v {
			if err := checkKeys(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isJSONFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func isScenarioFile(path string) bool {
	return isJSONFile(path) || isYAMLFile(path)
}
