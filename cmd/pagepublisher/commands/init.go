package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pagepublisher/internal/config"
)

// InitCmd implements 'init'.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := g.Out
	if out == nil {
		out = stdout()
	}
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
