package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/obstacle"
)

// ErrInvalidConfig wraps every cross-field validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	NeighborhoodBruteForce = "bruteforce"
	NeighborhoodRTree      = "rtree"

	embeddedSchemaURL = "flock.schema.json"

	// MaxTicksPerFrame bounds viewer.ticksPerFrame, the schema says the same.
	MaxTicksPerFrame = 20
)

//go:embed flock.schema.json
var embeddedSchema []byte

type ViewerConfig struct {
	ScreenWidth    int  `json:"screenWidth"`
	ScreenHeight   int  `json:"screenHeight"`
	TicksPerFrame  int  `json:"ticksPerFrame"`
	ShowObstacles  bool `json:"showObstacles"`
	ShowPerception bool `json:"showPerception"`
}

type Config struct {
	// Swimming volume, centered on the origin
	World flock.Bounds `json:"world"`

	// Population
	NumBoids int    `json:"numBoids"`
	Seed     uint64 `json:"seed"`

	// Tick execution
	Workers      int    `json:"workers"`      // goroutines computing forces, 0 or 1 is sequential
	Neighborhood string `json:"neighborhood"` // "bruteforce" or "rtree"

	Tuning flock.Tuning `json:"tuning"`

	// Seabed obstacles, null disables avoidance entirely
	Reef *obstacle.ReefConfig `json:"reef"`

	Viewer   ViewerConfig `json:"viewer"`
	LogLevel string       `json:"logLevel"`
}

func DefaultConfig() *Config {
	reef := obstacle.DefaultReefConfig()
	return &Config{
		World:        flock.Bounds{Width: 60, Height: 30, Depth: 60},
		NumBoids:     100,
		Seed:         1,
		Workers:      1,
		Neighborhood: NeighborhoodBruteForce,
		Tuning:       flock.DefaultTuning(),
		Reef:         &reef,
		Viewer: ViewerConfig{
			ScreenWidth:    1000,
			ScreenHeight:   800,
			TicksPerFrame:  1,
			ShowObstacles:  true,
			ShowPerception: false,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
// An empty schemaFile uses the schema compiled into the binary. Fields missing
// from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	return parseConfig(b, sch)
}

// ParseConfig validates raw JSON against the embedded schema.
func ParseConfig(r io.Reader) (*Config, error) {
	sch, err := compileSchema("")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parseConfig(b, sch)
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		return jsonschema.Compile(schemaFile)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(embeddedSchemaURL, bytes.NewReader(embeddedSchema)); err != nil {
		return nil, err
	}
	return c.Compile(embeddedSchemaURL)
}

func parseConfig(b []byte, sch *jsonschema.Schema) (*Config, error) {
	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what the schema cannot express.
func (c *Config) Validate() error {
	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.NumBoids < 0 {
		return fmt.Errorf("%w: numBoids must not be negative, got %d", ErrInvalidConfig, c.NumBoids)
	}
	if c.Tuning.MinHeight >= c.World.Height/2 {
		return fmt.Errorf("%w: minHeight %g must stay below the ceiling at %g",
			ErrInvalidConfig, c.Tuning.MinHeight, c.World.Height/2)
	}
	if c.Tuning.MaxSpeed <= 0 || c.Tuning.MaxForce <= 0 {
		return fmt.Errorf("%w: maxSpeed and maxForce must be positive", ErrInvalidConfig)
	}
	switch c.Neighborhood {
	case "", NeighborhoodBruteForce, NeighborhoodRTree:
	default:
		return fmt.Errorf("%w: unknown neighborhood %q", ErrInvalidConfig, c.Neighborhood)
	}
	if n := c.Viewer.TicksPerFrame; n < 1 || n > MaxTicksPerFrame {
		return fmt.Errorf("%w: ticksPerFrame must be in [1, %d], got %d", ErrInvalidConfig, MaxTicksPerFrame, n)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Obstacles builds the reef, nil when the config disables it.
// The floor slab sits just under the agents' minimum height.
func (c *Config) Obstacles() (*obstacle.Group, error) {
	if c.Reef == nil {
		return nil, nil
	}
	reef, err := obstacle.Reef(*c.Reef, c.World, c.Tuning.MinHeight-0.5, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to build reef: %w", err)
	}
	return reef, nil
}

// FlockOptions translates the config into flock options.
func (c *Config) FlockOptions(logger log.Logger, reef *obstacle.Group) []flock.Option {
	opts := []flock.Option{
		flock.WithTuning(c.Tuning),
		flock.WithSeed(c.Seed),
		flock.WithWorkers(c.Workers),
		flock.WithLogger(logger),
	}
	if c.Neighborhood == NeighborhoodRTree {
		opts = append(opts, flock.WithNeighborhood(flock.NewRTreeIndex()))
	}
	if reef != nil {
		opts = append(opts, flock.WithObstacles(obstacle.NewStatic(reef), obstacle.NewRaycaster()))
	}
	return opts
}

// NewFlock builds the reef and spawns the flock it describes.
func (c *Config) NewFlock(logger log.Logger) (*flock.Flock, *obstacle.Group, error) {
	reef, err := c.Obstacles()
	if err != nil {
		return nil, nil, err
	}
	return flock.New(c.World, c.NumBoids, c.FlockOptions(logger, reef)...), reef, nil
}

// Logger returns a logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) log.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.New(level, w)
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarningLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InvalidLevel, fmt.Errorf("unknown log level %q", s)
}
