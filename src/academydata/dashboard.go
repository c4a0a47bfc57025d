package academydata

import (
	"context"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/db"
)

// What a student sees on their dashboard.
type Dashboard struct {
	Courses         []assignments.ResolvedAssignment `json:"courses"`
	OverallProgress int                              `json:"overallProgress"`
}

func BuildDashboard(assigned []assignments.Assignment, catalog []assignments.CatalogCourse) Dashboard {
	resolved := assignments.Reconcile(assigned, catalog)
	return Dashboard{
		Courses:         resolved,
		OverallProgress: assignments.AggregateProgress(resolved),
	}
}

func FetchDashboard(ctx context.Context, conn db.ConnOrTx, studentID int) (Dashboard, error) {
	assigned, err := FetchAssignmentsForStudent(ctx, conn, studentID)
	if err != nil {
		return Dashboard{}, err
	}
	catalog, err := FetchCatalog(ctx, conn, &studentID)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(assigned, catalog), nil
}
