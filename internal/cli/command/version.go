package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/webstash-go/internal/cli/output"
	"github.com/yndnr/webstash-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show build information",
		Action: versionAction,
	}
}

func versionAction(c *cli.Context) error {
	// A broken configuration must not hide the version.
	formatter := output.NewFormatter(output.FormatTable)
	if rt, err := runtimeFrom(c); err == nil {
		if f, _, err := formatterFor(rt); err == nil {
			formatter = f
		}
	}
	return formatter.Format(writer(c), buildinfo.Get())
}
