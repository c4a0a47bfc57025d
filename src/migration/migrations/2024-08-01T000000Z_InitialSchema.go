package migrations

import (
	"context"
	"time"

	"git.nurpath.academy/nurpath/portal/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Users, sessions, the catalog, and student assignments"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE portal_user (
			id SERIAL PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			password VARCHAR(256) NOT NULL DEFAULT '',
			email VARCHAR(254) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'student'
				CHECK (role IN ('student', 'instructor', 'registrar')),
			date_joined TIMESTAMP WITH TIME ZONE NOT NULL,
			last_login TIMESTAMP WITH TIME ZONE
		);
		CREATE UNIQUE INDEX portal_user_username ON portal_user (LOWER(username));

		CREATE TABLE session (
			id VARCHAR(40) PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			csrf_token VARCHAR(30) NOT NULL
		);

		CREATE TABLE catalog_course (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			instructor VARCHAR(255) NOT NULL DEFAULT '',
			level VARCHAR(64) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_date TIMESTAMP WITH TIME ZONE,
			lesson_count INT CHECK (lesson_count >= 0),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE course_assignment (
			id SERIAL PRIMARY KEY,
			student_id INT NOT NULL REFERENCES portal_user (id) ON DELETE CASCADE,
			course_id VARCHAR(64),
			title VARCHAR(255),
			instructor VARCHAR(255),
			level VARCHAR(64),
			status VARCHAR(20),
			description TEXT,
			start_date TIMESTAMP WITH TIME ZONE,
			lesson_count INT CHECK (lesson_count >= 0),
			progress DOUBLE PRECISION,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE TABLE lesson_completion (
			student_id INT NOT NULL REFERENCES portal_user (id) ON DELETE CASCADE,
			course_id VARCHAR(64) NOT NULL,
			lesson_key VARCHAR(255) NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE NOT NULL,
			UNIQUE (student_id, course_id, lesson_key)
		);
	`)
	return err
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE lesson_completion;
		DROP TABLE course_assignment;
		DROP TABLE catalog_course;
		DROP TABLE session;
		DROP TABLE portal_user;
	`)
	return err
}
