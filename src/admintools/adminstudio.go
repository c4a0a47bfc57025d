package admintools

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/docstore"
	"github.com/spf13/cobra"
)

func addStudioCommands(adminCommand *cobra.Command) {
	studioCommand := &cobra.Command{
		Use:   "studio",
		Short: "Inspect or replace the saved studio document",
	}
	adminCommand.AddCommand(studioCommand)

	dumpCommand := &cobra.Command{
		Use:   "dump",
		Short: "Print the saved studio document in the format that load accepts",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := mustDocStore()
			state, found, err := client.Load(ctx)
			if err != nil {
				panic(err)
			}
			if !found {
				fmt.Fprintf(os.Stderr, "No studio document at s3://%s/%s\n", client.Bucket(), client.Key())
				os.Exit(1)
			}

			raw, err := docstore.Encode(state, time.Now())
			if err != nil {
				panic(err)
			}
			fmt.Println(string(raw))
		},
	}
	studioCommand.AddCommand(dumpCommand)

	resetCommand := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the saved studio document",
		Long:  "Overwrite the saved studio document with the sample courses, or with an empty studio if --empty is given. Restart the website afterwards; it only reads the document at startup.",
		Run: func(cmd *cobra.Command, args []string) {
			empty, _ := cmd.Flags().GetBool("empty")

			var state authoring.State
			if !empty {
				state = authoring.SeedState(authoring.UUIDGenerator{})
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := mustDocStore()
			if err := client.Save(ctx, state); err != nil {
				panic(err)
			}
			fmt.Printf("Wrote %d course(s) to s3://%s/%s\n", len(state.Courses), client.Bucket(), client.Key())
		},
	}
	resetCommand.Flags().Bool("empty", false, "Write a studio with no courses")
	studioCommand.AddCommand(resetCommand)

	loadCommand := &cobra.Command{
		Use:   "load [file]",
		Short: "Replace the saved studio document with one from disk",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a file.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				panic(err)
			}
			state, err := docstore.Decode(raw)
			if err != nil {
				fmt.Printf("Could not read %s: %v\n", args[0], err)
				os.Exit(1)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := mustDocStore()
			if err := client.Save(ctx, state); err != nil {
				panic(err)
			}
			fmt.Printf("Wrote %d course(s) to s3://%s/%s\n", len(state.Courses), client.Bucket(), client.Key())
		},
	}
	studioCommand.AddCommand(loadCommand)
}

func mustDocStore() *docstore.Client {
	if config.Config.DocStore.Bucket == "" {
		fmt.Printf("No docstore bucket is configured.\n\n")
		os.Exit(1)
	}
	client, err := docstore.NewFromConfig(config.Config.DocStore)
	if err != nil {
		panic(err)
	}
	return client
}
