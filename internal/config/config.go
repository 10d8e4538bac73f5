// Package config loads the board description used by the simulator and
// tools from a YAML file.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"basicrv/internal/log"
	"basicrv/mmio"
	"basicrv/sim"
)

type Config struct {
	SoC     SoC     `yaml:"soc"`
	UART    UART    `yaml:"uart"`
	GPIO    GPIO    `yaml:"gpio"`
	Console Console `yaml:"console"`
	Log     Log     `yaml:"log"`
	Trace   Trace   `yaml:"trace"`
}

type SoC struct {
	IOBase uint32 `yaml:"io_base"`
	RAMKiB uint32 `yaml:"ram_kib"`
}

type UART struct {
	// BusyPolls is how many UART_CNTL reads report busy after each byte.
	BusyPolls int `yaml:"busy_polls"`
}

type GPIO struct {
	Width  int    `yaml:"width"`
	Inputs uint32 `yaml:"inputs"`
}

type Console struct {
	// PollTimeout bounds the console's busy wait; 0 waits forever.
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Trace struct {
	Path  string `yaml:"path"`
	Reads bool   `yaml:"reads"`
}

// LoadError reports a configuration file that could not be used.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Default returns the basicRISCV board configuration.
func Default() *Config {
	return &Config{
		SoC:     SoC{IOBase: mmio.DefaultBase, RAMKiB: 64},
		UART:    UART{BusyPolls: 1},
		GPIO:    GPIO{Width: 4},
		Console: Console{PollTimeout: time.Second},
		Log:     Log{Level: "warn", Format: "text"},
	}
}

// Parse overlays YAML data on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	c, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
		}
		return nil, err
	}
	return c, nil
}

// Validate checks that the board description is consistent.
func (c *Config) Validate() error {
	switch {
	case c.SoC.IOBase%4 != 0:
		return &LoadError{Message: fmt.Sprintf("io_base 0x%x is not word aligned", c.SoC.IOBase)}
	case c.SoC.RAMKiB == 0:
		return &LoadError{Message: "ram_kib must be positive"}
	case uint64(c.SoC.RAMKiB)*1024 > uint64(c.SoC.IOBase):
		return &LoadError{Message: fmt.Sprintf("ram_kib %d overlaps io_base 0x%x", c.SoC.RAMKiB, c.SoC.IOBase)}
	case c.UART.BusyPolls < 0:
		return &LoadError{Message: "uart.busy_polls must not be negative"}
	case c.GPIO.Width < 1 || c.GPIO.Width > 32:
		return &LoadError{Message: fmt.Sprintf("gpio.width %d out of range 1..32", c.GPIO.Width)}
	case c.Console.PollTimeout < 0:
		return &LoadError{Message: "console.poll_timeout must not be negative"}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return &LoadError{Message: "invalid log level", Cause: err}
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return &LoadError{Message: "invalid log format", Cause: err}
	}
	return nil
}

// Machine returns the simulator configuration with console output sent to out.
func (c *Config) Machine(out io.Writer) sim.Config {
	return sim.Config{
		IOBase:        c.SoC.IOBase,
		RAMSize:       uint64(c.SoC.RAMKiB) * 1024,
		UARTBusyPolls: c.UART.BusyPolls,
		GPIOWidth:     c.GPIO.Width,
		GPIOInputs:    c.GPIO.Inputs,
		Console:       out,
	}
}

// ApplyLogging configures the default logger from the Log section.
func (c *Config) ApplyLogging(w io.Writer) error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	format, err := log.ParseFormat(c.Log.Format)
	if err != nil {
		return err
	}
	log.Setup(w, format)
	log.SetLevel(level)
	return nil
}
