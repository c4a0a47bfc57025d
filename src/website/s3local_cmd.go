package website

import (
	"os"
	"os/signal"
	"time"

	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/jobs"
	"git.nurpath.academy/nurpath/portal/src/logging"
	"git.nurpath.academy/nurpath/portal/src/s3local"
	"github.com/spf13/cobra"
)

func init() {
	s3localCommand := &cobra.Command{
		Use:   "s3local [dir]",
		Short: "Serve a local S3 stand-in for the studio document",
		Long:  "Serves a folder as an S3 bucket store for development, without starting the rest of the portal. Defaults to the configured S3Local dir.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := config.Config.S3Local.Dir
			if len(args) > 0 {
				dir = args[0]
			}
			addr, _ := cmd.Flags().GetString("addr")

			job := s3local.StartServer(addr, dir)

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt)
			select {
			case <-signals:
				logging.Info().Msg("Shutting down s3local")
				if unfinished := (jobs.Jobs{job}).CancelAndWait(5 * time.Second); len(unfinished) > 0 {
					logging.Warn().Strs("Unfinished", unfinished).Msg("s3local did not shut down cleanly")
				}
			case <-job.Finished():
			}
		},
	}
	s3localCommand.Flags().String("addr", config.Config.S3Local.Addr, "Address to listen on")
	WebsiteCommand.AddCommand(s3localCommand)
}
