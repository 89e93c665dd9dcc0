package cli

import (
	"errors"
	"fmt"

	"github.com/FranksOps/indexnow/internal/config"
	"github.com/FranksOps/indexnow/internal/metrics"
	"github.com/FranksOps/indexnow/internal/report"
	"github.com/FranksOps/indexnow/internal/source"
	"github.com/FranksOps/indexnow/internal/submit"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/FranksOps/indexnow/pkg/ratelimit"
	"github.com/spf13/cobra"
)

const fetchJitter = 0.2

var errNoURLs = errors.New("no urls to submit: pass URLs or use --sitemap, --robots or --page")

func newSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit [URL...]",
		Short: "Submit changed URLs",
		Long: `Submit notifies the endpoint that the given URLs changed.

One URL is sent with GET and several with one POST (mode auto). All URLs
of a POST must share one host, and with --key-location they must lie in
the key file's directory. Up to 10000 URLs can be sent at once; larger
lists are rejected, never split.`,
		Example: `  indexnow submit -k $KEY https://example.com/new-page
  indexnow submit --engine bing --sitemap https://example.com/sitemap.xml
  indexnow submit --dry-run @urls.txt`,
		RunE: runSubmit,
	}
	config.AddKeyFlags(cmd.Flags())
	config.AddSubmitFlags(cmd.Flags())
	config.AddTransportFlags(cmd.Flags())
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSubmit(); err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// Validated above; the errors cannot recur.
	key, _ := cfg.ParseKey()
	loc, _ := cfg.ParseKeyLocation()
	target, _ := cfg.ParseTarget()
	mode, _ := cfg.ParseMode()

	// Explicit URLs are checked before any network traffic.
	if _, err := indexnow.ParseContentURLs(args); err != nil {
		return err
	}
	src := source.Sources{URLs: args, Sitemaps: cfg.Sitemaps, Robots: cfg.Robots, Pages: cfg.Pages}
	if src.Empty() {
		return errNoURLs
	}

	client, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var metricsServer *metrics.Server
	if cfg.MetricsPort > 0 {
		metricsServer = metrics.Start(cfg.MetricsPort, logger)
		defer func() { _ = metricsServer.Stop(ctx) }()
	}

	raw := args
	if len(src.Sitemaps)+len(src.Robots)+len(src.Pages) > 0 {
		fetcher := source.NewFetcher(client, ratelimit.NewLimiter(cfg.FetchRPS, fetchJitter), logger)
		raw, err = source.NewCollector(fetcher, logger).Collect(ctx, src)
		if err != nil {
			return err
		}
		logger.Info("collected urls", "count", len(raw))
	}
	if len(raw) == 0 {
		return errNoURLs
	}

	urls, err := indexnow.ParseContentURLs(raw)
	if err != nil {
		return err
	}

	sub := submit.Submission{
		Engine:      target.Engine,
		Endpoint:    target.Endpoint,
		Key:         key,
		KeyLocation: loc,
		URLs:        urls,
		Mode:        mode,
	}

	if cfg.DryRun {
		req, err := sub.Build()
		if err != nil {
			return err
		}
		return submit.Describe(cmd.OutOrStdout(), req, key)
	}

	res, err := submit.New(client, logger).Submit(ctx, sub)
	if res != nil {
		if werr := report.Write(cmd.OutOrStdout(), cfg.Report, report.GenerateSummary([]*submit.Result{res})); werr != nil {
			return errors.Join(err, werr)
		}
	}
	if err != nil {
		return fmt.Errorf("submit %d url(s) to %s: %w", len(urls), target.Engine, err)
	}
	return nil
}
