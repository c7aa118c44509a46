package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/silvabyte/chez/schema"
	"github.com/silvabyte/chez/validate"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: check requires a schema file argument", cli.ErrUsage)
	}
	root, err := loadSchema(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	reg := schema.BuildRegistry(root)

	docFiles := args[1:]
	if len(docFiles) == 0 {
		docFiles = []string{"-"}
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	if !cfg.useColor(cc.Out) {
		ok.DisableColor()
		bad.DisableColor()
	}

	failed := 0
	for _, file := range docFiles {
		doc, err := loadValue(cfg.MainConfig, cc, file)
		if err != nil {
			return err
		}
		errs := validate.Validate(root, doc, reg)
		name := file
		if name == "-" {
			name = "stdin"
		}
		if len(errs) == 0 {
			ok.Fprintf(cc.Out, "%s: ok\n", name)
			continue
		}
		failed++
		bad.Fprintf(cc.Out, "%s: invalid (%d error(s))\n", name, len(errs))
		if cfg.Quiet {
			continue
		}
		for _, e := range errs {
			fmt.Fprintf(cc.Out, "  %s\n", e.Error())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed validation", failed, len(docFiles))
	}
	return nil
}
