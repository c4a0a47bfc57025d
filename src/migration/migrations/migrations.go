package migrations

import (
	"git.nurpath.academy/nurpath/portal/src/migration/types"
)

var All = make(map[types.MigrationVersion]types.Migration)

func registerMigration(m types.Migration) {
	All[m.Version()] = m
}
