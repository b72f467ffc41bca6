// Package config reads settings from .env files and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"pyjs/pkg/codegen"
	"pyjs/pkg/logger"
)

const (
	KeyIndentPolicy = "PYJS_INDENT_POLICY"
	KeyIndentWidth  = "PYJS_INDENT_WIDTH"
	KeyOutputDir    = "PYJS_OUTPUT_DIR"
	KeyHeader       = "PYJS_HEADER"
	KeyWorkers      = "PYJS_WORKERS"
	KeyLogLevel     = "PYJS_LOG_LEVEL"
	KeyLogFormat    = "PYJS_LOG_FORMAT"
	KeyLogFile      = "PYJS_LOG_FILE"
	KeyAddr         = "PYJS_ADDR"
	KeyJWTSecret    = "PYJS_JWT_SECRET"
	KeyCacheSize    = "PYJS_CACHE_SIZE"
)

// Keys lists every recognised variable.
var Keys = []string{
	KeyIndentPolicy, KeyIndentWidth, KeyOutputDir, KeyHeader, KeyWorkers,
	KeyLogLevel, KeyLogFormat, KeyLogFile, KeyAddr, KeyJWTSecret, KeyCacheSize,
}

// DefaultEnvFile is read by Load when no files are named. It may be absent.
const DefaultEnvFile = ".env"

type Config struct {
	IndentPolicy codegen.IndentPolicy
	IndentWidth  int
	OutputDir    string
	Header       bool
	Workers      int
	LogLevel     logger.LogLevel
	LogFormat    string
	LogFile      string
	Addr         string
	JWTSecret    string // empty disables auth
	CacheSize    int
}

func Default() Config {
	return Config{
		IndentPolicy: codegen.Flat,
		IndentWidth:  4,
		OutputDir:    "outputs",
		Header:       true,
		Workers:      runtime.NumCPU(),
		LogLevel:     logger.LevelInfo,
		LogFormat:    "text",
		Addr:         ":8080",
		CacheSize:    256,
	}
}

// Load merges the given .env files with the environment; the environment
// wins. Named files must exist.
func Load(files ...string) (Config, error) {
	values := map[string]string{}

	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			files = []string{DefaultEnvFile}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if len(files) > 0 {
		fileValues, err := godotenv.Read(files...)
		if err != nil {
			return Config{}, fmt.Errorf("reading env file: %w", err)
		}
		values = fileValues
	}

	for _, key := range Keys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}
	return FromMap(values)
}

// Parse reads settings from .env formatted text.
func Parse(text string) (Config, error) {
	values, err := godotenv.Unmarshal(text)
	if err != nil {
		return Config{}, err
	}
	return FromMap(values)
}

// FromMap applies values over the defaults. Unknown keys are ignored.
func FromMap(values map[string]string) (Config, error) {
	cfg := Default()
	var err error

	if v, ok := lookup(values, KeyIndentPolicy); ok {
		if cfg.IndentPolicy, err = codegen.ParsePolicy(v); err != nil {
			return Config{}, keyError(KeyIndentPolicy, err)
		}
	}
	if v, ok := lookup(values, KeyIndentWidth); ok {
		if cfg.IndentWidth, err = positiveInt(v); err != nil {
			return Config{}, keyError(KeyIndentWidth, err)
		}
	}
	if v, ok := lookup(values, KeyOutputDir); ok {
		cfg.OutputDir = v
	}
	if v, ok := lookup(values, KeyHeader); ok {
		if cfg.Header, err = strconv.ParseBool(v); err != nil {
			return Config{}, keyError(KeyHeader, err)
		}
	}
	if v, ok := lookup(values, KeyWorkers); ok {
		if cfg.Workers, err = positiveInt(v); err != nil {
			return Config{}, keyError(KeyWorkers, err)
		}
	}
	if v, ok := lookup(values, KeyLogLevel); ok {
		if cfg.LogLevel, err = logger.ParseLevel(v); err != nil {
			return Config{}, keyError(KeyLogLevel, err)
		}
	}
	if v, ok := lookup(values, KeyLogFormat); ok {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, keyError(KeyLogFormat, fmt.Errorf("want text or json, got %q", v))
		}
		cfg.LogFormat = v
	}
	if v, ok := lookup(values, KeyLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup(values, KeyAddr); ok {
		cfg.Addr = v
	}
	if v, ok := values[KeyJWTSecret]; ok {
		cfg.JWTSecret = v
	}
	if v, ok := lookup(values, KeyCacheSize); ok {
		if cfg.CacheSize, err = strconv.Atoi(v); err != nil || cfg.CacheSize < 0 {
			return Config{}, keyError(KeyCacheSize, fmt.Errorf("want a non-negative integer, got %q", v))
		}
	}

	return cfg, nil
}

// CodegenOptions converts the indentation settings.
func (c Config) CodegenOptions() codegen.Options {
	return codegen.Options{
		Policy: c.IndentPolicy,
		Indent: strings.Repeat(" ", c.IndentWidth),
	}
}

func (c Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.LogFile = c.LogFile
	return cfg
}

// lookup treats blank values as unset.
func lookup(values map[string]string, key string) (string, bool) {
	v, ok := values[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("want a positive integer, got %q", s)
	}
	return n, nil
}

func keyError(key string, err error) error {
	return fmt.Errorf("config %s: %w", key, err)
}
