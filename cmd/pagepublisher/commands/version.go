package commands

import (
	"io"
	"os"

	"git.home.luguber.info/inful/pagepublisher/internal/version"
)

// VersionCmd implements 'version'.
type VersionCmd struct{}

func (VersionCmd) Run(g *Global) error {
	return printResult(g, version.Current())
}

func stdout() io.Writer { return os.Stdout }
