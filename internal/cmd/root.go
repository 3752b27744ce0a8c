package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rmcgee/healthdash/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbosity    int
	apiBaseURL   string
	listenAddr   string
	dbPath       string
	defaultRange string
	syncInterval time.Duration
	openBrowser  bool
)

var rootCmd = &cobra.Command{
	Use:   "healthdash",
	Short: "healthdash - serve chart-ready health tracker data to the dashboard",
	Long: `healthdash fronts a personal health-tracker backend (workouts, daily
activity, sleep) and serves chart-ready projections to the dashboard UI.

The server runs with:
- One fetcher per collection (workouts, daily metrics, nightly metrics, summary)
- Periodic snapshot refresh into a local SQLite database for offline display
- A bearer-token login proxied to the backend

Configuration may also come from the environment (a .env file is honored):
HEALTHDASH_API_URL, HEALTHDASH_TOKEN, HEALTHDASH_USERNAME, HEALTHDASH_PASSWORD.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env values become environment defaults; real env vars win
		if err := godotenv.Load(); err == nil {
			logging.Setup(logging.Level(verbosity))
			logging.Logger.Debug().Msg("loaded .env file")
			return
		}
		logging.Setup(logging.Level(verbosity))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if apiBaseURL == "" {
			apiBaseURL = envOr("HEALTHDASH_API_URL", "http://localhost:8000")
		}

		rtCfg := &RuntimeConfig{
			APIBaseURL:   apiBaseURL,
			ListenAddr:   listenAddr,
			DBPath:       dbPath,
			DefaultRange: defaultRange,
			SyncInterval: syncInterval,
			OpenBrowser:  openBrowser,
			Token:        os.Getenv("HEALTHDASH_TOKEN"),
			Username:     os.Getenv("HEALTHDASH_USERNAME"),
			Password:     os.Getenv("HEALTHDASH_PASSWORD"),
		}

		return Run(rtCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v for debug, -vv for trace with HTTP headers)")

	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "health tracker backend base URL (default $HEALTHDASH_API_URL or http://localhost:8000)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", ":8080", "dashboard API listen address")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "healthdash.db", "path to the local SQLite database")
	rootCmd.PersistentFlags().StringVar(&defaultRange, "range", "last-30-days", "default named date range (last-7-days, last-30-days, last-90-days, this-week, this-month)")
	rootCmd.PersistentFlags().DurationVar(&syncInterval, "sync-interval", 15*time.Minute, "interval between snapshot refreshes")
	rootCmd.PersistentFlags().BoolVar(&openBrowser, "open", false, "open the dashboard in the browser after startup")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
