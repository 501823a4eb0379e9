// Package cli implements the drawsync command line.
//
// Commands run against Services built lazily from the configuration file,
// so "version" and "help" work without one.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/config/file"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services are what the commands run against.
type Services struct {
	Jobs      driving.JobService
	Scheduler driving.Scheduler

	// Metrics serves /metrics. Nil leaves it unrouted.
	Metrics http.Handler

	// Config is the loaded configuration file.
	Config *file.Config

	// Close releases stores and clients. May be nil.
	Close func() error
}

// Bootstrap builds Services from the configuration file at path.
type Bootstrap func(ctx context.Context, path string) (*Services, error)

var (
	bootstrap  Bootstrap
	services   *Services
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "drawsync",
	Short: "Reconcile lottery draw results from unreliable sources",
	Long: `drawsync keeps one canonical record per lottery draw date, merged from
the results API, official result sheets, a mirror site, OCR and result pages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.drawsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets how Services are built on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects ready-made Services, bypassing Bootstrap.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadServices returns the Services, building them on first use.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	s, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return nil, err
	}
	services = s
	return s, nil
}

func jobService(cmd *cobra.Command) (driving.JobService, error) {
	s, err := loadServices(cmd)
	if err != nil {
		return nil, err
	}
	if s.Jobs == nil {
		return nil, errors.New("job service not configured")
	}
	return s.Jobs, nil
}

// configuredOptions returns the window the config file sets for job.
func configuredOptions(job domain.JobName) (domain.JobOptions, error) {
	if services == nil || services.Config == nil {
		return domain.JobOptions{}, nil
	}
	return services.Config.JobOptions(job)
}

func closeServices() error {
	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services.Close = nil
	return err
}
