package admintools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/db"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addCourseCommands(adminCommand *cobra.Command) {
	courseCommand := &cobra.Command{
		Use:   "course",
		Short: "Manage the catalog and student assignments",
	}
	adminCommand.AddCommand(courseCommand)

	addCatalogCommand(courseCommand)
	addAssignCommand(courseCommand)
	addUnassignCommand(courseCommand)
	addCompleteCommand(courseCommand)
	addDashboardCommand(courseCommand)
}

func addCatalogCommand(courseCommand *cobra.Command) {
	catalogCommand := &cobra.Command{
		Use:   "catalog [course id]",
		Short: "Create or replace a catalog course",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a course id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			in := academydata.CatalogCourseInput{ID: args[0]}
			in.Title, _ = cmd.Flags().GetString("title")
			in.Instructor, _ = cmd.Flags().GetString("instructor")
			in.Level, _ = cmd.Flags().GetString("level")
			in.Description, _ = cmd.Flags().GetString("description")

			statusStr, _ := cmd.Flags().GetString("status")
			status, ok := assignments.ParseCourseStatus(statusStr)
			if !ok {
				fmt.Printf("Unknown status '%s'. Use upcoming, active, or completed.\n\n", statusStr)
				os.Exit(1)
			}
			in.Status = status

			var err error
			in.StartDate, err = dateFlag(cmd.Flags(), "start")
			if err != nil {
				fmt.Printf("%v\n\n", err)
				os.Exit(1)
			}
			if cmd.Flags().Changed("lessons") {
				lessons, _ := cmd.Flags().GetInt("lessons")
				in.LessonCount = &lessons
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			if err := academydata.UpsertCatalogCourse(ctx, conn, in); err != nil {
				panic(err)
			}
			fmt.Printf("Saved catalog course '%s'\n", in.ID)
		},
	}
	catalogCommand.Flags().String("title", "", "")
	catalogCommand.Flags().String("instructor", "", "")
	catalogCommand.Flags().String("level", "", "")
	catalogCommand.Flags().String("status", string(assignments.CourseStatusUpcoming), "upcoming, active, or completed")
	catalogCommand.Flags().String("description", "", "Markdown")
	catalogCommand.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	catalogCommand.Flags().Int("lessons", 0, "Number of lessons")
	catalogCommand.MarkFlagRequired("title")
	courseCommand.AddCommand(catalogCommand)
}

func addAssignCommand(courseCommand *cobra.Command) {
	assignCommand := &cobra.Command{
		Use:   "assign [username] [course id]",
		Short: "Put a course on a student's dashboard",
		Long:  "Put a course on a student's dashboard. The course doesn't need to be in the catalog yet; any flags given override the catalog's values for this student.",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a course id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			overrides, err := overridesFromFlags(cmd.Flags())
			if err != nil {
				fmt.Printf("%v\n\n", err)
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			student := mustFetchUser(ctx, conn, args[0])
			courseID := args[1]
			id, err := academydata.AssignCourse(ctx, conn, student.ID, &courseID, overrides)
			if err != nil {
				panic(err)
			}
			fmt.Printf("Assigned '%s' to %s (assignment %d)\n", courseID, student.Username, id)
		},
	}
	assignCommand.Flags().String("title", "", "")
	assignCommand.Flags().String("instructor", "", "")
	assignCommand.Flags().String("level", "", "")
	assignCommand.Flags().String("status", "", "upcoming, active, or completed")
	assignCommand.Flags().String("description", "", "")
	assignCommand.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	assignCommand.Flags().Int("lessons", 0, "Number of lessons")
	assignCommand.Flags().Float64("progress", 0, "Progress percentage reported by the registrar")
	courseCommand.AddCommand(assignCommand)
}

func addUnassignCommand(courseCommand *cobra.Command) {
	unassignCommand := &cobra.Command{
		Use:   "unassign [assignment id]",
		Short: "Remove an assignment from a student's dashboard",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide an assignment id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Assignment ids are numbers.\n\n")
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			err = academydata.DeleteAssignment(ctx, conn, id)
			if errors.Is(err, academydata.ErrNoSuchAssignment) {
				fmt.Printf("Assignment %d not found.\n\n", id)
				os.Exit(1)
			} else if err != nil {
				panic(err)
			}
			fmt.Printf("Removed assignment %d\n", id)
		},
	}
	courseCommand.AddCommand(unassignCommand)
}

func addCompleteCommand(courseCommand *cobra.Command) {
	completeCommand := &cobra.Command{
		Use:   "complete [username] [course id] [lesson key]...",
		Short: "Record lessons a student has finished",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 3 {
				fmt.Printf("You must provide a username, a course id, and at least one lesson.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			student := mustFetchUser(ctx, conn, args[0])
			courseID := args[1]
			for _, lesson := range args[2:] {
				if err := academydata.RecordLessonCompletion(ctx, conn, student.ID, courseID, lesson); err != nil {
					panic(err)
				}
			}
			fmt.Printf("Recorded %d lesson(s) for %s in '%s'\n", len(args)-2, student.Username, courseID)
		},
	}
	courseCommand.AddCommand(completeCommand)
}

func addDashboardCommand(courseCommand *cobra.Command) {
	dashboardCommand := &cobra.Command{
		Use:   "dashboard [username]",
		Short: "Print a student's dashboard as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			student := mustFetchUser(ctx, conn, args[0])
			dashboard, err := academydata.FetchDashboard(ctx, conn, student.ID)
			if err != nil {
				panic(err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(dashboard); err != nil {
				panic(err)
			}
		},
	}
	courseCommand.AddCommand(dashboardCommand)
}

// Only flags that were actually passed become overrides.
func overridesFromFlags(flags *pflag.FlagSet) (academydata.AssignmentOverrides, error) {
	var o academydata.AssignmentOverrides

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	o.Title = str("title")
	o.Instructor = str("instructor")
	o.Level = str("level")
	o.Description = str("description")

	if s := str("status"); s != nil {
		status, ok := assignments.ParseCourseStatus(*s)
		if !ok {
			return o, fmt.Errorf("unknown status '%s'; use upcoming, active, or completed", *s)
		}
		o.Status = &status
	}

	start, err := dateFlag(flags, "start")
	if err != nil {
		return o, err
	}
	o.StartDate = start

	if flags.Changed("lessons") {
		v, _ := flags.GetInt("lessons")
		o.LessonCount = &v
	}
	if flags.Changed("progress") {
		v, _ := flags.GetFloat64("progress")
		o.Progress = &v
	}
	return o, nil
}

func dateFlag(flags *pflag.FlagSet, name string) (*time.Time, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	v, _ := flags.GetString(name)
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("--%s must look like 2024-09-09", name)
	}
	return &t, nil
}
