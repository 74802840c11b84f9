// Command surveyctl administers categories and surveys from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/d-nishikido/organization-survey-tool/client"
)

const commandTimeout = 30 * time.Second

type rootOptions struct {
	serviceURL string
	token      string
	locale     string
	debug      bool
	jsonOut    bool
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Manage survey categories, surveys and results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.serviceURL, "service-url", "", "Base URL of the survey backend (default $SURVEY_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (default $SURVEY_TOKEN or $SURVEY_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", "", "Language of error messages (ja, en)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Log every request")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newCategoriesCmd(opts))
	rootCmd.AddCommand(newSurveysCmd(opts))
	rootCmd.AddCommand(newAnalyticsCmd(opts))
	return rootCmd
}

// newClient builds a client from SURVEY_* variables with flag overrides.
// Failures published by the client are logged as they happen.
func newClient(opts *rootOptions) (*client.Client, error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.serviceURL != "" {
		cfg.BaseURL = opts.serviceURL
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no service URL: set --service-url or SURVEY_BASE_URL")
	}
	if opts.locale != "" {
		cfg.Locale = opts.locale
	}
	cfg.Debug = cfg.Debug || opts.debug

	extra := cfg.Options()
	if opts.token != "" {
		extra = append(extra, client.WithToken(opts.token))
	}
	c, err := client.New(cfg.BaseURL, extra...)
	if err != nil {
		return nil, err
	}
	c.Notifier().Subscribe(func(ev client.Event) {
		evt := log.Warn()
		if ev.Type == client.EventError {
			evt = log.Error()
		}
		if ev.Err != nil {
			evt = evt.Str("code", string(ev.Err.Code)).Int("status", ev.Err.StatusCode)
		}
		evt.Msg(ev.Message)
	})
	return c, nil
}

// withClient runs fn with a fresh client and a bounded context.
func withClient(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c *client.Client) error) error {
	c, err := newClient(opts)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	start := time.Now()
	err = fn(ctx, c)
	log.Debug().Str("command", cmd.CommandPath()).Dur("elapsed", time.Since(start)).Err(err).Msg("command finished")
	if err != nil {
		return describe(err)
	}
	return nil
}

// describe appends validation details to a normalized error.
func describe(err error) error {
	e, ok := client.AsError(err)
	if !ok || e.Code != client.CodeValidation {
		return err
	}
	lines := client.FormatValidationErrors(e.Details)
	if len(lines) == 0 {
		return err
	}
	msg := e.Message
	for _, l := range lines {
		msg += "\n  " + l
	}
	return fmt.Errorf("%s", msg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
