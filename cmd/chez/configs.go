package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/silvabyte/chez/jsonval"
	"github.com/silvabyte/chez/schema"
)

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='read inputs as json'"`
	Y bool `cli:"name=y aliases=yaml desc='read inputs as yaml'"`

	Color   bool `cli:"name=color desc='force colored output'"`
	NoColor bool `cli:"name=nocolor desc='disable colored output'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// useColor reports whether output to w should be colored: forced on by
// -color, off by -nocolor, otherwise on when w is a terminal.
func (cfg *MainConfig) useColor(w io.Writer) bool {
	if cfg.NoColor {
		return false
	}
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// yamlIn reports whether name's content should be read as YAML, from the -y
// flag or the file extension.
func (cfg *MainConfig) yamlIn(name string) bool {
	if cfg.J {
		return false
	}
	if cfg.Y {
		return true
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func readInput(cc *cli.Context, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cc.In)
	}
	return os.ReadFile(file)
}

func loadSchema(cfg *MainConfig, cc *cli.Context, file string) (*schema.Node, error) {
	data, err := readInput(cc, file)
	if err != nil {
		return nil, fmt.Errorf("error reading schema %s: %w", file, err)
	}
	if cfg.yamlIn(file) {
		return schema.ParseYAML(data)
	}
	return schema.ParseJSON(data)
}

func loadValue(cfg *MainConfig, cc *cli.Context, file string) (*jsonval.Value, error) {
	data, err := readInput(cc, file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", file, err)
	}
	if cfg.yamlIn(file) {
		return jsonval.DecodeYAML(data)
	}
	return jsonval.Decode(data)
}

type CheckConfig struct {
	*MainConfig

	Quiet bool `cli:"name=q aliases=quiet desc='suppress per-error output'"`

	Check *cli.Command
}

type ShowConfig struct {
	*MainConfig

	Compact bool `cli:"name=c aliases=compact desc='single-line output'"`

	Show *cli.Command
}

type SatConfig struct {
	*MainConfig

	Sat *cli.Command
}
