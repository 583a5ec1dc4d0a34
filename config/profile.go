package config

import "os"

// Profile describes layered config sources.
type Profile struct {
	BasePath     string
	EnvPath      string
	SecretsPath  string
	EnvPrefix    string
	AllowMissing bool
}

// Loader composes layered config with defaults and validation.
type Loader[T any] struct {
	Defaults func() T
	ApplyEnv func(prefix string, base T) T
	Validate func(cfg T) error
}

// Load merges profile layers into a typed config.
func (l Loader[T]) Load(profile Profile) (T, error) {
	var cfg T
	if l.Defaults != nil {
		cfg = l.Defaults()
	}

	var err error
	if profile.BasePath != "" {
		cfg, err = loadLayer(profile.BasePath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.EnvPath != "" {
		cfg, err = loadLayer(profile.EnvPath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.SecretsPath != "" {
		cfg, err = loadLayer(profile.SecretsPath, cfg, profile.AllowMissing)
		if err != nil {
			return cfg, err
		}
	}
	if profile.EnvPrefix != "" && l.ApplyEnv != nil {
		cfg = l.ApplyEnv(profile.EnvPrefix, cfg)
	}
	if l.Validate != nil {
		if err := l.Validate(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// LoadProfile loads Config from a layered profile with validation.
func LoadProfile(profile Profile) (Config, error) {
	loader := Loader[Config]{
		Defaults: Default,
		ApplyEnv: LoadFromEnv,
		Validate: Validate,
	}
	return loader.Load(profile)
}

func loadLayer[T any](path string, base T, allowMissing bool) (T, error) {
	cfg, err := decodeFile(path, base)
	if err != nil && allowMissing && os.IsNotExist(err) {
		return base, nil
	}
	return cfg, err
}
