package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/silvabyte/chez/schema"
)

func sat(cfg *SatConfig, cc *cli.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: sat requires exactly one schema file argument", cli.ErrUsage)
	}
	root, err := loadSchema(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	if err := schema.CheckSatisfiable(root); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "satisfiable\n")
	return nil
}
