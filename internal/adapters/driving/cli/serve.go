package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/httpapi"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/inbox"
	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driving/mcp"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the scheduler and the upload inbox",
	Long: `Serves job triggers, draw records and /metrics over HTTP, runs the
scheduled jobs and ingests sheets dropped into the inbox directory. The
MCP server is mounted at /mcp.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "listen address (default from config, 127.0.0.1:8787)")
	f.String("inbox", "", "directory watched for uploaded sheets")
	f.Bool("no-scheduler", false, "do not run scheduled jobs")
	rootCmd.AddCommand(serveCmd)
}

// shutdownTimeout bounds in-flight requests when the server stops.
const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Jobs == nil {
		return errors.New("job service not configured")
	}

	addr, inboxDir := serveSettings(cmd, s)
	noScheduler, _ := cmd.Flags().GetBool("no-scheduler")

	mcpServer, err := mcp.NewServer(&mcp.Ports{Jobs: s.Jobs, Scheduler: s.Scheduler}, version)
	if err != nil {
		return err
	}
	router := httpapi.New(s.Jobs, s.Metrics).Router()
	router.Mount("/mcp", mcpServer.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		logger.Info("serve: listening on http://%s", ln.Addr())
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if s.Scheduler != nil && !noScheduler {
		g.Go(func() error {
			err := s.Scheduler.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			return s.Scheduler.Stop()
		})
	}

	if inboxDir != "" {
		g.Go(func() error {
			return inbox.New(inboxDir, s.Jobs, 0).Run(ctx)
		})
	}

	return g.Wait()
}

// serveSettings resolves flags over the config file.
func serveSettings(cmd *cobra.Command, s *Services) (addr, inboxDir string) {
	addr = "127.0.0.1:8787"
	if s.Config != nil {
		if s.Config.Server.Addr != "" {
			addr = s.Config.Server.Addr
		}
		inboxDir = s.Config.Server.InboxDir
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}
	if v, _ := cmd.Flags().GetString("inbox"); v != "" {
		inboxDir = v
	}
	return addr, inboxDir
}
