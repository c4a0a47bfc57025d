/*
This package contains lowish-level APIs for making database queries to the portal's Postgres database. It streamlines the process of mapping query results to Go types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator. See the package and function examples for detailed usage.

Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	courseIDs, err := db.QueryScalar[string](ctx, conn,
		`
		SELECT id
		FROM catalog_course
		WHERE
			level = ANY($1)
			AND status = $2
		`,
		[]string{"Beginner", "All levels"},
		"active",
	)

(This also demonstrates a useful tip: if you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.QueryScalar[string](ctx, conn, `SELECT id FROM catalog_course`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type CatalogCourse struct {
		ID        string     `db:"id"`
		Title     string     `db:"title"`
		StartDate *time.Time `db:"start_date"`
	}
	courses, err := db.Query[CatalogCourse](ctx, conn, `SELECT $columns FROM catalog_course`)
	// Resulting query:
	// SELECT id, title, start_date FROM catalog_course

Pointer fields receive NULL as nil.

Sometimes a table name prefix is required on each column to disambiguate between column names, especially when performing a JOIN. In those situations, you can include the prefix in the $columns placeholder like $columns{prefix}:

	unassigned, err := db.Query[CatalogCourse](ctx, conn, `
		SELECT $columns{course}
		FROM
			catalog_course AS course
			LEFT JOIN course_assignment AS a ON a.course_id = course.id
		WHERE
			a.id IS NULL
	`)
	// Resulting query:
	// SELECT course.id, course.title, course.start_date FROM ...

Nested structs with a db tag pull in their own fields under that tag, which is
handy for joins:

	type AssignmentRow struct {
		Assignment CourseAssignment `db:"a"`
		Course     *CatalogCourse   `db:"course"`
	}

Queries can be named for perf output by starting them with a "---- Name" line.
*/
package db
