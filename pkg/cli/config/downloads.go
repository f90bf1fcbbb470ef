package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Downloads holds destination and orchestration configuration
type Downloads struct {
	Dir           string
	TargetTimeout time.Duration
	AllLinks      bool
}

// Flags returns CLI flags for download configuration
func (c *Downloads) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "downloads-dir",
			Aliases:     []string{"d"},
			Usage:       "Directory where downloaded files are written",
			Value:       "downloads",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("OMFETCH_DOWNLOADS_DIR"),
		},
		&cli.DurationFlag{
			Name:        "target-timeout",
			Usage:       "Time budget for one target's navigation run",
			Value:       5 * time.Minute,
			Destination: &c.TargetTimeout,
			Sources:     cli.EnvVars("OMFETCH_TARGET_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:        "all-links",
			Usage:       "Keep every successful file per target instead of stopping at the first",
			Value:       false,
			Destination: &c.AllLinks,
			Sources:     cli.EnvVars("OMFETCH_ALL_LINKS"),
		},
	}
}
