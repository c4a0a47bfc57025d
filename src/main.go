package main

import (
	_ "git.nurpath.academy/nurpath/portal/src/admintools"
	_ "git.nurpath.academy/nurpath/portal/src/migration"
	"git.nurpath.academy/nurpath/portal/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
