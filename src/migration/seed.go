package migration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/utils"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/jackc/pgx/v5/tracelog"
)

// Loads a pg_dump (custom format) into the configured database.
func SeedFromFile(seedFile string) {
	file, err := os.Open(seedFile)
	if err != nil {
		panic(fmt.Errorf("couldn't open seed file %s: %w", seedFile, err))
	}
	file.Close()

	fmt.Println("Executing seed...")
	cmd := exec.Command("pg_restore",
		"--single-transaction",
		"--dbname", config.Config.Postgres.DSN(),
		seedFile,
	)
	fmt.Println("Running command:", cmd)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Print(string(output))
		panic(fmt.Errorf("failed to execute seed: %w", err))
	}

	fmt.Println("Done! You may want to migrate forward from here.")
	ListMigrations()
}

// Creates only what's necessary to log in: a registrar account.
func BareMinimumSeed() {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating registrar (\"registrar\"/\"password\")...")
	seedUser(ctx, tx, models.User{Username: "registrar", Name: "Academy Registrar", Role: models.RoleRegistrar})

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

// Seeds the database with sample data for local dev.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating instructors and students (all with password \"password\")...")
	seedUser(ctx, tx, models.User{Username: "maryam", Name: "Ustadha Maryam Siddiqui", Role: models.RoleInstructor})
	amina := seedUser(ctx, tx, models.User{Username: "amina", Name: "Amina Yusuf"})
	bilal := seedUser(ctx, tx, models.User{Username: "bilal", Name: "Bilal Haddad"})

	fmt.Println("Creating the catalog...")
	for _, course := range sampleCatalog() {
		if err := academydata.UpsertCatalogCourse(ctx, tx, course); err != nil {
			panic(err)
		}
	}

	fmt.Println("Assigning courses...")
	assign := func(student *models.User, courseID string, o academydata.AssignmentOverrides) {
		if _, err := academydata.AssignCourse(ctx, tx, student.ID, utils.P(courseID), o); err != nil {
			panic(err)
		}
	}
	assign(amina, "seerah-makkan", academydata.AssignmentOverrides{})
	assign(amina, "tajweed-foundations", academydata.AssignmentOverrides{})
	assign(amina, "arabic-reading", academydata.AssignmentOverrides{
		// Not in the catalog yet; the assignment carries everything.
		Title:       utils.P("Reading Arabic Script"),
		Instructor:  utils.P("Ustadh Khalid Noor"),
		Level:       utils.P("Beginner"),
		Status:      utils.P(assignments.CourseStatusUpcoming),
		LessonCount: utils.P(10),
	})
	assign(bilal, "fiqh-of-worship", academydata.AssignmentOverrides{
		Progress: utils.P(40.0),
	})
	assign(bilal, "seerah-makkan", academydata.AssignmentOverrides{
		Status: utils.P(assignments.CourseStatusCompleted),
	})

	fmt.Println("Recording lesson completions...")
	for _, lesson := range []string{"lesson-1", "lesson-2", "lesson-3"} {
		if err := academydata.RecordLessonCompletion(ctx, tx, amina.ID, "seerah-makkan", lesson); err != nil {
			panic(err)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

func sampleCatalog() []academydata.CatalogCourseInput {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []academydata.CatalogCourseInput{
		{
			ID:          "seerah-makkan",
			Title:       "Seerah: The Makkan Period",
			Instructor:  "Ustadha Maryam Siddiqui",
			Level:       "Foundational",
			Status:      assignments.CourseStatusActive,
			Description: lorem.Paragraph(2, 4),
			StartDate:   date(2024, time.September, 9),
			LessonCount: utils.P(12),
		},
		{
			ID:          "tajweed-foundations",
			Title:       "Tajweed Foundations",
			Instructor:  "Shaykh Idris Rahman",
			Level:       "Beginner",
			Status:      assignments.CourseStatusUpcoming,
			Description: lorem.Paragraph(2, 4),
			StartDate:   date(2024, time.October, 1),
			LessonCount: utils.P(8),
		},
		{
			ID:          "fiqh-of-worship",
			Title:       "Fiqh of Worship",
			Instructor:  "Ustadh Yusuf Karimi",
			Level:       "Intermediate",
			Status:      assignments.CourseStatusActive,
			Description: lorem.Paragraph(2, 4),
			StartDate:   date(2025, time.February, 3),
			// Lesson count not announced yet.
		},
		{
			ID:          "aqeedah-intro",
			Title:       "Introduction to Aqeedah",
			Instructor:  "Ustadha Maryam Siddiqui",
			Level:       "Foundational",
			Status:      assignments.CourseStatusCompleted,
			Description: lorem.Paragraph(1, 2),
			StartDate:   date(2024, time.January, 15),
			LessonCount: utils.P(6),
		},
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, input models.User) *models.User {
	user, err := academydata.CreateUser(ctx, conn,
		input.Username,
		utils.OrDefault(input.Email, fmt.Sprintf("%s@example.com", input.Username)),
		input.Name,
		utils.OrDefault(input.Role, models.RoleStudent),
		"",
	)
	if err != nil {
		panic(err)
	}
	err = auth.SetPassword(ctx, conn, input.Username, "password")
	if err != nil {
		panic(err)
	}

	return user
}
