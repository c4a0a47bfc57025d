package website

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/docstore"
	"git.nurpath.academy/nurpath/portal/src/jobs"
	"git.nurpath.academy/nurpath/portal/src/logging"
	"git.nurpath.academy/nurpath/portal/src/perf"
	"git.nurpath.academy/nurpath/portal/src/s3local"
	"git.nurpath.academy/nurpath/portal/src/templates"
	"git.nurpath.academy/nurpath/portal/src/utils"
	"github.com/jpillora/backoff"
	"github.com/spf13/cobra"
)

var WebsiteCommand = &cobra.Command{
	Use:   "portal",
	Short: "Run the NurPath academy portal",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Str("env", string(config.Config.Env)).Msg("Starting the portal")

		templates.Init()

		var wg sync.WaitGroup

		conn := db.NewConnPool()
		perfCollector, perfCollectorJob := perf.RunPerfCollector()

		backgroundJobs := jobs.Jobs{
			perfCollectorJob,
			auth.PeriodicallyDeleteExpiredSessions(conn),
		}
		if config.Config.Dev.RunLocalS3 {
			backgroundJobs = append(backgroundJobs, s3local.StartServer(config.Config.S3Local.Addr, config.Config.S3Local.Dir))
		}

		studio := openStudio()

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(conn, studio, perfCollector),
		}
		server.RegisterOnShutdown(closeLiveFeeds)
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the portal")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-signals // First signal (start shutdown)
			logging.Info().Msg("Shutting down the portal")

			const timeout = 10 * time.Second

			// Gracefully shut down the HTTP server, then make sure the last
			// studio change made it to the document store.
			timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			err := server.Shutdown(timeoutCtx)
			if err != nil {
				logging.Warn().Err(err).Msg("Server did not shut down gracefully")
			}
			if err := studio.Flush(timeoutCtx); err != nil {
				logging.Error().Err(err).Msg("Failed to save the studio document on shutdown")
			}

			go func() {
				<-signals // Second signal (force quit)
				logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the portal")
				os.Exit(1)
			}()

			logging.Info().Msg("Shutting down background jobs...")
			unfinished := backgroundJobs.CancelAndWait(timeout)
			if len(unfinished) == 0 {
				logging.Info().Msg("Background jobs closed gracefully")
			} else {
				logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
			}
			wg.Done()
		}()

		// Wait for all of the above to finish, then exit
		wg.Wait()
	},
}

// Builds the studio store and loads the saved document, if there is one.
// Startup continues with an empty (or seeded) studio when the document store
// is unreachable; the next successful save overwrites whatever was there.
func openStudio() *authoring.Store {
	var initial authoring.State
	if config.Config.Dev.SeedStudio {
		initial = authoring.SeedState(authoring.UUIDGenerator{})
	}

	if config.Config.DocStore.Bucket == "" {
		logging.Warn().Msg("No docstore bucket configured; studio changes will not be saved")
		return authoring.NewStore(initial, authoring.UUIDGenerator{}, nil)
	}

	client, err := docstore.NewFromConfig(config.Config.DocStore)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure the docstore; studio changes will not be saved")
		return authoring.NewStore(initial, authoring.UUIDGenerator{}, nil)
	}

	studio := authoring.NewStore(initial, authoring.UUIDGenerator{}, client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The local S3 server may still be starting up.
	boff := backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second}
	var found bool
	for attempt := 1; attempt <= 5; attempt++ {
		found, err = studio.Load(ctx)
		if err == nil || utils.SleepContext(ctx, boff.Duration()) != nil {
			break
		}
	}
	if err != nil {
		logging.Error().Err(err).Str("bucket", client.Bucket()).Str("key", client.Key()).Msg("Failed to load the studio document")
	} else if found {
		logging.Info().Int("courses", len(studio.Snapshot().Courses)).Msg("Loaded the studio document")
	} else {
		logging.Info().Str("key", client.Key()).Msg("No studio document saved yet")
	}

	return studio
}
