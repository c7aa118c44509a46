package main

import (
	"encoding/json"
	"fmt"

	"github.com/scott-cotton/cli"
)

func show(cfg *ShowConfig, cc *cli.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: show requires exactly one schema file argument", cli.ErrUsage)
	}
	root, err := loadSchema(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	doc := root.Document()
	var data []byte
	if cfg.Compact {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "%s\n", data)
	return nil
}
