package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultMaxConcurrency = 4

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form converter MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	FormDirectory   string
	OutputDirectory string

	// Conversion configuration
	MaxConcurrency int
	StrictSchema   bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum document file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // Default to stdio mode for MCP compatibility
		Host:           DefaultHost,
		Port:           DefaultPort,
		FormDirectory:  currentDir,
		MaxConcurrency: DefaultMaxConcurrency,
		StrictSchema:   true,
		Version:        "1.0.0",
		ServerName:     "mcp-form-converter",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.FormDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.FormDirectory); err == nil {
			cfg.FormDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("MCP_FORM")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.FormDirectory)
	viper.SetDefault("outdir", cfg.OutputDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("maxconcurrency", cfg.MaxConcurrency)
	viper.SetDefault("strictschema", cfg.StrictSchema)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.FormDirectory, "Directory containing form documents")
	pflag.String("outdir", cfg.OutputDirectory, "Directory for converted documents (defaults to <dir>/converted)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document file size in bytes")
	pflag.Int("maxconcurrency", cfg.MaxConcurrency, "Concurrent conversions during directory runs")
	pflag.Bool("strictschema", cfg.StrictSchema, "Reject documents that fail the embedded JSON schema")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("outdir", pflag.Lookup("outdir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("maxconcurrency", pflag.Lookup("maxconcurrency"))
	_ = viper.BindPFlag("strictschema", pflag.Lookup("strictschema"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Form Converter - A Model Context Protocol server that converts "+
			"form documents into schema-compliant field documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms                    "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms --outdir=/path/out # custom output directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_MODE           Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_DIR            Form document directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_OUTDIR         Output directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_MAXFILESIZE    Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_MAXCONCURRENCY Concurrent conversions\n")
		fmt.Fprintf(os.Stderr, "  MCP_FORM_STRICTSCHEMA   Enforce the JSON schema gate\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.FormDirectory = viper.GetString("dir")
	cfg.OutputDirectory = viper.GetString("outdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MaxConcurrency = viper.GetInt("maxconcurrency")
	cfg.StrictSchema = viper.GetBool("strictschema")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate form directory
	if c.FormDirectory == "" {
		return errors.New("form directory cannot be empty")
	}

	// Check if form directory exists, create if it doesn't
	if _, err := os.Stat(c.FormDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.FormDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create form directory %s: %w", c.FormDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access form directory %s: %w", c.FormDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate concurrency
	if c.MaxConcurrency <= 0 {
		return errors.New("maximum concurrency must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, FormDirectory: %s, OutputDirectory: %s, "+
		"LogLevel: %s, MaxFileSize: %d, MaxConcurrency: %d, StrictSchema: %t}",
		c.Mode, c.Host, c.Port, c.FormDirectory, c.OutputDirectory,
		c.LogLevel, c.MaxFileSize, c.MaxConcurrency, c.StrictSchema)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
