package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment overrides: QUIZ_BACKEND_URL sets backend.url.
const EnvPrefix = "QUIZ_"

type Config struct {
	Server struct {
		Port string `koanf:"port" validate:"required,numeric"`
	} `koanf:"server"`
	Backend struct {
		URL     string        `koanf:"url" validate:"required,url"`
		Token   string        `koanf:"token"`
		Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	} `koanf:"backend"`
	Redis struct {
		Addr     string        `koanf:"addr" validate:"omitempty,hostname_port"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db" validate:"gte=0"`
		TTL      time.Duration `koanf:"ttl" validate:"gte=0"`
	} `koanf:"redis"`
	Postgres struct {
		URL string `koanf:"url"`
	} `koanf:"postgres"`
	Quiz struct {
		TTL time.Duration `koanf:"ttl" validate:"gte=0"`
	} `koanf:"quiz"`
	Attempt struct {
		Tick time.Duration `koanf:"tick" validate:"gt=0"`
	} `koanf:"attempt"`
	History struct {
		Driver string `koanf:"driver" validate:"oneof=memory redis sqlite postgres"`
		DSN    string `koanf:"dsn" validate:"required_if=Driver sqlite,required_if=Driver postgres"`
		Limit  int    `koanf:"limit" validate:"gte=0"`
	} `koanf:"history"`
	Reference struct {
		Port     string `koanf:"port" validate:"required,numeric"`
		Fixtures string `koanf:"fixtures"`
		Secret   string `koanf:"secret"`
	} `koanf:"reference"`
}

// Default is the configuration used for every key no source sets.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Backend.URL = "http://localhost:8000"
	cfg.Backend.Timeout = 10 * time.Second
	cfg.Redis.TTL = 10 * time.Minute
	cfg.Quiz.TTL = 10 * time.Minute
	cfg.Attempt.Tick = time.Second
	cfg.History.Driver = "memory"
	cfg.History.Limit = 20
	cfg.Reference.Port = "8000"
	cfg.Reference.Fixtures = "config/quizzes.yaml"
	return cfg
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"port":        "server.port",
	"backend":     "backend.url",
	"token":       "backend.token",
	"redis":       "redis.addr",
	"postgres":    "postgres.url",
	"history":     "history.driver",
	"history-dsn": "history.dsn",

	"reference-port": "reference.port",
	"fixtures":       "reference.fixtures",
	"secret":         "reference.secret",
}

// Load layers, lowest first: defaults, the YAML file at path (optional when
// missing), QUIZ_* environment variables and the flags the user set.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.History.Driver == "postgres" && cfg.History.DSN == "" {
		cfg.History.DSN = cfg.Postgres.URL
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
