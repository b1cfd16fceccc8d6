package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Naming    NamingConfig    `yaml:"naming" envconfig:"NAMING"`
	Parser    ParserConfig    `yaml:"parser" envconfig:"PARSER"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig contains the input/output roots and run behaviour
type PipelineConfig struct {
	InputDir   string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Workers    int    `yaml:"workers" envconfig:"WORKERS" validate:"min=0,max=256"`
	NestedDirs string `yaml:"nested_dirs" envconfig:"NESTED_DIRS" validate:"oneof=error ignore"`
}

// NamingConfig contains the file naming vocabulary used by the classifier
type NamingConfig struct {
	Extension     string   `yaml:"extension" envconfig:"EXTENSION" validate:"required,startswith=."`
	SecondsMarker string   `yaml:"seconds_marker" envconfig:"SECONDS_MARKER" validate:"required"`
	PartMarkers   []string `yaml:"part_markers" envconfig:"PART_MARKERS" validate:"unique,dive,required"`
	IgnoreTokens  []string `yaml:"ignore_tokens" envconfig:"IGNORE_TOKENS" validate:"dive,required"`
}

// ParserConfig contains the raw table format
type ParserConfig struct {
	Delimiter       string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"delimiter"`
	DateColumn      string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	TimeColumn      string   `yaml:"time_column" envconfig:"TIME_COLUMN" validate:"required"`
	DateTimeColumn  string   `yaml:"datetime_column" envconfig:"DATETIME_COLUMN" validate:"required"`
	DateLayouts     []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS" validate:"min=1,dive,required"`
	TimeLayouts     []string `yaml:"time_layouts" envconfig:"TIME_LAYOUTS" validate:"min=1,dive,required"`
	DateTimeLayouts []string `yaml:"datetime_layouts" envconfig:"DATETIME_LAYOUTS" validate:"min=1,dive,required"`
	Timezone        string   `yaml:"timezone" envconfig:"TIMEZONE" validate:"required,timezone"`
}

// OutputConfig contains emitter settings
type OutputConfig struct {
	Format          string `yaml:"format" envconfig:"FORMAT" validate:"oneof=csv xlsx"`
	Delimiter       string `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,delimiter"`
	TimestampLabel  string `yaml:"timestamp_label" envconfig:"TIMESTAMP_LABEL" validate:"required"`
	TimestampLayout string `yaml:"timestamp_layout" envconfig:"TIMESTAMP_LAYOUT" validate:"required"`
	FloatPrecision  int    `yaml:"float_precision" envconfig:"FLOAT_PRECISION" validate:"min=-1,max=17"`
	Summary         bool   `yaml:"summary" envconfig:"SUMMARY"`
	Metadata        bool   `yaml:"metadata" envconfig:"METADATA"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains tracing and metrics export settings.
// Empty file paths disable the corresponding export.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// TRIBO_* environment variables, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// LoadFromFile builds the configuration from defaults and a YAML file only
func LoadFromFile(configFile string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(configFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("delimiter", isDelimiter); err != nil {
		return fmt.Errorf("register delimiter validation: %w", err)
	}

	// Use YAML tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		return formatValidationError(err)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}
	if c.Naming.SecondsMarker != "" {
		for _, marker := range c.Naming.PartMarkers {
			if strings.EqualFold(marker, c.Naming.SecondsMarker) {
				return fmt.Errorf("part marker %q collides with the seconds marker", marker)
			}
		}
	}

	return nil
}

// OutputDelimiter returns the delimiter used by the emitter
func (c *Config) OutputDelimiter() rune {
	if c.Output.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(c.Output.Delimiter)
		return r
	}
	r, _ := utf8.DecodeRuneInString(c.Parser.Delimiter)
	return r
}

// isDelimiter accepts a single rune usable as a CSV field separator
func isDelimiter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}

// formatValidationError flattens validator errors into one readable message
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Workers:    0,
			NestedDirs: NestedDirsError,
		},
		Naming: NamingConfig{
			Extension:     DefaultExtension,
			SecondsMarker: DefaultSecondsMarker,
			PartMarkers:   DefaultPartMarkers(),
			IgnoreTokens:  DefaultIgnoreTokens(),
		},
		Parser: ParserConfig{
			Delimiter:       DefaultDelimiter,
			DateColumn:      DefaultDateColumn,
			TimeColumn:      DefaultTimeColumn,
			DateTimeColumn:  DefaultDateTimeColumn,
			DateLayouts:     DefaultDateLayouts(),
			TimeLayouts:     DefaultTimeLayouts(),
			DateTimeLayouts: DefaultDateTimeLayouts(),
			Timezone:        DefaultTimezone,
		},
		Output: OutputConfig{
			Format:          DefaultOutputFormat,
			TimestampLabel:  DefaultDateTimeColumn,
			TimestampLayout: DefaultTimestampLayout,
			FloatPrecision:  DefaultFloatPrecision,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
