package migrations

import (
	"context"
	"time"

	"git.nurpath.academy/nurpath/portal/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddAssignmentIndexes{})
}

type AddAssignmentIndexes struct{}

func (m AddAssignmentIndexes) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2024, 9, 2, 15, 12, 0, 0, time.UTC))
}

func (m AddAssignmentIndexes) Name() string {
	return "AddAssignmentIndexes"
}

func (m AddAssignmentIndexes) Description() string {
	return "Index the dashboard and session cleanup lookups"
}

func (m AddAssignmentIndexes) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE INDEX course_assignment_student ON course_assignment (student_id, created_at);
		CREATE INDEX session_expires_at ON session (expires_at);
		CREATE INDEX session_username ON session (LOWER(username));
	`)
	return err
}

func (m AddAssignmentIndexes) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP INDEX course_assignment_student;
		DROP INDEX session_expires_at;
		DROP INDEX session_username;
	`)
	return err
}
