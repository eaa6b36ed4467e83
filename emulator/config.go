package emulator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/ls8/cpu"
)

// Config holds the run-time options of an emulator.
//
//	verbose: false
//	trace: true
//	unknown: skip      # stall, skip, or halt
//	max_ticks: 10000   # 0 is unlimited
type Config struct {
	Verbose  bool              `yaml:"verbose"`
	Trace    bool              `yaml:"trace"`
	Unknown  cpu.UnknownPolicy `yaml:"unknown"`
	MaxTicks int               `yaml:"max_ticks"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Unknown: cpu.UNKNOWN_HALT,
	}
}

// LoadConfig decodes a YAML configuration on top of DefaultConfig().
// Unknown keys are rejected.
func LoadConfig(input io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()

	dec := yaml.NewDecoder(input)
	dec.KnownFields(true)

	err = dec.Decode(&cfg)
	if errors.Is(err, io.EOF) {
		// Empty document.
		err = nil
	}
	if err == nil && cfg.MaxTicks < 0 {
		err = fmt.Errorf("max_ticks %d < 0", cfg.MaxTicks)
	}
	if err != nil {
		err = errors.Join(ErrConfigInvalid, err)
		return
	}

	return
}

// LoadConfigFile decodes the named YAML configuration file.
func LoadConfigFile(name string) (cfg Config, err error) {
	inf, err := os.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = LoadConfig(inf)
	return
}
