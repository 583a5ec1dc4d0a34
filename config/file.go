package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a JSON or YAML file into the base
// config. Unknown keys are rejected in both formats.
func LoadFromFile(path string, base Config) (Config, error) {
	return decodeFile(path, base)
}

func decodeFile[T any](path string, base T) (T, error) {
	file, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
			return base, err
		}
	default:
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&base); err != nil {
			return base, err
		}
	}
	return base, nil
}
