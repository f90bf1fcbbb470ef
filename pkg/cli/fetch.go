package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/theus-ai/omfetch/pkg/cli/config"
	"github.com/theus-ai/omfetch/pkg/domain/model"
	"github.com/theus-ai/omfetch/pkg/infra/agent"
	"github.com/theus-ai/omfetch/pkg/infra/fetch"
	"github.com/theus-ai/omfetch/pkg/infra/scan"
	"github.com/theus-ai/omfetch/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	var (
		llmCfg       config.LLM
		browserCfg   config.Browser
		downloadsCfg config.Downloads
		identityCfg  config.Identity
	)

	flags := append(llmCfg.Flags(), browserCfg.Flags()...)
	flags = append(flags, downloadsCfg.Flags()...)
	flags = append(flags, identityCfg.Flags()...)

	return &cli.Command{
		Name:      "fetch",
		Aliases:   []string{"f"},
		Usage:     "Download documents from one or more listing page URLs",
		ArgsUsage: "<url> [<url> ...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			urls := c.Args().Slice()
			if len(urls) == 0 {
				return goerr.New("at least one listing page URL is required")
			}

			identity, err := identityCfg.Resolve()
			if err != nil {
				return goerr.Wrap(err, "failed to resolve identity")
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}
			if llmClient == nil {
				logger.Warn("No OpenAI API key configured; agent navigation disabled, page scan only")
			}
			logger.Debug("LLM configuration", "config", llmCfg)

			navigator, err := agent.NewNavigator(llmClient, scan.NewScanner(), browserCfg.AgentConfig(downloadsCfg.Dir))
			if err != nil {
				return goerr.Wrap(err, "failed to create navigator")
			}

			uc := usecase.NewDownload(navigator, fetch.NewFetcher(), identity, usecase.Config{
				TargetTimeout: downloadsCfg.TargetTimeout,
				CollectAll:    downloadsCfg.AllLinks,
			})

			targets := make([]model.DownloadTarget, 0, len(urls))
			for _, u := range urls {
				targets = append(targets, model.DownloadTarget{
					URL:     u,
					DestDir: downloadsCfg.Dir,
				})
			}

			logger.Info("Starting download run",
				"targets", len(targets),
				"downloads_dir", downloadsCfg.Dir,
			)

			reports, err := uc.Run(ctx, targets)
			if err != nil {
				return goerr.Wrap(err, "download run failed")
			}

			printSummary(reports)

			succeeded := 0
			for _, r := range reports {
				if r.Succeeded {
					succeeded++
				}
			}
			if succeeded == 0 {
				return goerr.New("no target yielded a download",
					goerr.V("targets", len(targets)))
			}
			return nil
		},
	}
}
