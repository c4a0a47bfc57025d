package admintools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/website"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	setPasswordCommand := &cobra.Command{
		Use:   "setpassword [username] [new password]",
		Short: "Replace a user's password",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a password.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := args[1]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user := mustFetchUser(ctx, conn, username)

			err := auth.SetPassword(ctx, conn, user.Username, password)
			if err != nil {
				panic(err)
			}

			n, err := auth.DeleteSessionsForUser(ctx, conn, user.Username)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Successfully updated password for '%s' and logged out %d session(s)\n", user.Username, n)
		},
	}
	adminCommand.AddCommand(setPasswordCommand)

	createUserCommand := &cobra.Command{
		Use:   "createuser [username]",
		Short: "Creates a new user with the password 'password'",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			password := "password"

			roleStr, _ := cmd.Flags().GetString("role")
			role, err := models.ParseUserRole(roleStr)
			if err != nil {
				fmt.Printf("%v\n\n", err)
				os.Exit(1)
			}
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				email = uuid.New().String() + "@example.com"
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			_, err = academydata.FetchUserByUsername(ctx, conn, username)
			if err == nil {
				fmt.Printf("%s already exists. Please pick a different username.\n\n", username)
				os.Exit(1)
			} else if !errors.Is(err, db.NotFound) {
				panic(err)
			}

			user, err := academydata.CreateUser(ctx, conn, username, email, name, role, auth.HashPassword(password).String())
			if err != nil {
				panic(err)
			}

			fmt.Printf("New user added!\nID: %d\nUsername: %s\nRole: %s\nPassword: %s\n", user.ID, user.Username, user.Role, password)
			fmt.Printf("You can change the password with:\n")
			fmt.Printf("admin setpassword %s <new password>\n", user.Username)
		},
	}
	createUserCommand.Flags().String("role", string(models.RoleStudent), "student, instructor, or registrar")
	createUserCommand.Flags().String("name", "", "Display name")
	createUserCommand.Flags().String("email", "", "Email address (defaults to a random example.com address)")
	adminCommand.AddCommand(createUserCommand)

	userRoleCommand := &cobra.Command{
		Use:   "userrole [username] [role]",
		Short: "Set the user's role (student, instructor, or registrar)",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a username and a role.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]
			role, err := models.ParseUserRole(args[1])
			if err != nil {
				fmt.Printf("%v\n\n", err)
				os.Exit(1)
			}

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			res, err := conn.Exec(ctx,
				`
				UPDATE portal_user
				SET role = $1
				WHERE LOWER(username) = LOWER($2)
				`,
				string(role),
				username,
			)
			if err != nil {
				panic(err)
			}
			if res.RowsAffected() == 0 {
				fmt.Printf("User not found.\n\n")
				os.Exit(1)
			}

			fmt.Printf("%s is now a %s.\n\n", username, role)
		},
	}
	adminCommand.AddCommand(userRoleCommand)

	addCourseCommands(adminCommand)
	addStudioCommands(adminCommand)
}

func mustFetchUser(ctx context.Context, conn db.ConnOrTx, username string) *models.User {
	user, err := academydata.FetchUserByUsername(ctx, conn, username)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			fmt.Printf("User '%s' not found\n", username)
			os.Exit(1)
		}
		panic(err)
	}
	return user
}
