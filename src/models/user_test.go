package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoles(t *testing.T) {
	student := &User{Role: RoleStudent}
	instructor := &User{Role: RoleInstructor}
	registrar := &User{Role: RoleRegistrar}

	assert.False(t, student.CanAuthorCourses())
	assert.True(t, instructor.CanAuthorCourses())
	assert.True(t, registrar.CanAuthorCourses())

	assert.False(t, student.CanManageAssignments())
	assert.False(t, instructor.CanManageAssignments())
	assert.True(t, registrar.CanManageAssignments())

	var nobody *User
	assert.False(t, nobody.CanAuthorCourses())
	assert.False(t, nobody.CanManageAssignments())
}

func TestParseUserRole(t *testing.T) {
	r, err := ParseUserRole(" Instructor ")
	assert.Nil(t, err)
	assert.Equal(t, RoleInstructor, r)

	_, err = ParseUserRole("dean")
	assert.NotNil(t, err)
}

func TestBestName(t *testing.T) {
	assert.Equal(t, "Maryam Siddiqui", (&User{Username: "maryam", Name: "Maryam Siddiqui"}).BestName())
	assert.Equal(t, "maryam", (&User{Username: "maryam"}).BestName())
}
