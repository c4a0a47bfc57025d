package models

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var UserType = reflect.TypeOf(User{})

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleRegistrar  UserRole = "registrar"
)

var AllRoles = []UserRole{RoleStudent, RoleInstructor, RoleRegistrar}

func ParseUserRole(s string) (UserRole, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID int `db:"id"`

	Username string `db:"username"`
	Password string `db:"password"`
	Email    string `db:"email"`
	Name     string `db:"name"`

	Role UserRole `db:"role"`

	DateJoined time.Time  `db:"date_joined"`
	LastLogin  *time.Time `db:"last_login"`
}

func (u *User) BestName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Instructors and registrars can use the studio.
func (u *User) CanAuthorCourses() bool {
	return u != nil && (u.Role == RoleInstructor || u.Role == RoleRegistrar)
}

func (u *User) CanManageAssignments() bool {
	return u != nil && u.Role == RoleRegistrar
}
