package utils

import (
	"errors"
	"testing"

	"git.nurpath.academy/nurpath/portal/src/oops"
	"github.com/stretchr/testify/assert"
)

var sentinelError = errors.New("sentinel")

func TestRecoverPanicAsError(t *testing.T) {
	t.Run("no panic, no error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			return nil
		}
		err := f()
		assert.Nil(t, err)
	})
	t.Run("no panic, error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			return sentinelError
		}
		err := f()
		assert.True(t, errors.Is(err, sentinelError))
	})
	t.Run("panic, no error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			panic("blerp")
		}
		err := f()
		var asOops *oops.Error
		assert.ErrorContains(t, err, "blerp")
		assert.True(t, errors.As(err, &asOops))
	})
	t.Run("panic, error", func(t *testing.T) {
		f := func() (err error) {
			defer RecoverPanicAsError(&err)
			err = sentinelError
			panic("blerp")
		}
		err := f()
		var asOops *oops.Error
		assert.ErrorContains(t, err, "blerp")
		assert.ErrorContains(t, err, "sentinel")
		assert.True(t, errors.As(err, &asOops))
		assert.True(t, errors.Is(err, sentinelError))
	})
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "Instructor TBA", OrDefault("", "Instructor TBA"))
	assert.Equal(t, "Ustadha Maryam", OrDefault("Ustadha Maryam", "Instructor TBA"))
	assert.Equal(t, 5, OrDefault(0, 5))
}

func TestIntClamp(t *testing.T) {
	assert.Equal(t, 0, IntClamp(0, -4, 100))
	assert.Equal(t, 100, IntClamp(0, 140, 100))
	assert.Equal(t, 37, IntClamp(0, 37, 100))
}
