package config

import (
	"time"

	"github.com/theus-ai/omfetch/pkg/infra/agent"
	"github.com/urfave/cli/v3"
)

// Browser holds browser and agent-run configuration
type Browser struct {
	Headless     bool
	SettleTime   time.Duration
	MaxSteps     int64
	DownloadWait time.Duration
}

// Flags returns CLI flags for browser configuration
func (c *Browser) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "headless",
			Usage:       "Run the browser without a visible window",
			Value:       false,
			Destination: &c.Headless,
			Sources:     cli.EnvVars("OMFETCH_HEADLESS"),
		},
		&cli.DurationFlag{
			Name:        "settle-time",
			Usage:       "Pause after each browser action so network activity quiesces",
			Value:       3 * time.Second,
			Destination: &c.SettleTime,
			Sources:     cli.EnvVars("OMFETCH_SETTLE_TIME"),
		},
		&cli.Int64Flag{
			Name:        "max-steps",
			Usage:       "Agent tool-call budget per target",
			Value:       12,
			Destination: &c.MaxSteps,
			Sources:     cli.EnvVars("OMFETCH_MAX_STEPS"),
		},
		&cli.DurationFlag{
			Name:        "download-wait",
			Usage:       "Grace period for in-flight downloads after the agent run",
			Value:       5 * time.Second,
			Destination: &c.DownloadWait,
			Sources:     cli.EnvVars("OMFETCH_DOWNLOAD_WAIT"),
		},
	}
}

// AgentConfig materializes the navigator configuration for the given
// downloads directory.
func (c *Browser) AgentConfig(downloadDir string) agent.Config {
	cfg := agent.DefaultConfig(downloadDir)
	cfg.Browser.Headless = c.Headless
	cfg.Browser.SettleTime = c.SettleTime
	cfg.MaxSteps = int(c.MaxSteps)
	cfg.DownloadWait = c.DownloadWait
	return cfg
}
