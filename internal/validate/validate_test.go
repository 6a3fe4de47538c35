package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/errs"
)

type signup struct {
	Name  string `form:"name" validate:"required,max=10"`
	Email string `form:"email" validate:"required,email"`
	Plan  string `form:"plan" validate:"oneof=free pro"`
}

func TestStructReportsFormNames(t *testing.T) {
	err := Struct(signup{Name: "way too long a name", Email: "nope", Plan: "gold"})
	require.ErrorIs(t, err, errs.ErrValidation)

	fields := errs.As(err).Fields()
	assert.Equal(t, "must be at most 10 characters", fields["name"])
	assert.Equal(t, "must be a valid email", fields["email"])
	assert.Equal(t, "must be one of free, pro", fields["plan"])

	assert.NoError(t, Struct(signup{Name: "Ada", Email: "ada@example.com", Plan: "pro"}))
}

func TestTrimStrings(t *testing.T) {
	s := signup{Name: "  Ada ", Email: "\tada@example.com\n"}
	TrimStrings(&s)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "ada@example.com", s.Email)

	TrimStrings(s) // not a pointer, ignored
}

func TestID(t *testing.T) {
	for in, want := range map[string]int64{"1": 1, " 42 ": 42} {
		got, ok := ID(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "0", "-3", "1.5", "abc", "99999999999999999999"} {
		_, ok := ID(in)
		assert.False(t, ok, in)
	}
}

func TestQty(t *testing.T) {
	assert.Equal(t, 3, Qty("3"))
	assert.Equal(t, 0, Qty("0"))
	assert.Equal(t, 0, Qty("-2"))
	assert.Equal(t, 0, Qty("lots"))
}

func TestPassword(t *testing.T) {
	for _, ok := range []string{"Passw0rd!", "Correct horse1", "aB3$aB3$aB3$aB3$aB3$"} {
		assert.True(t, Password(ok), ok)
	}
	for _, bad := range []string{"", "Sh0rt!", "password1!", "PASSWORD1!", "Password!!", "Password12", "aB3$aB3$aB3$aB3$aB3$x"} {
		assert.False(t, Password(bad), bad)
	}

	type form struct {
		Password string `form:"password" validate:"required,password"`
	}
	err := Struct(form{Password: "alllowercase"})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, errs.As(err).Fields()["password"], "upper and lower case")
	assert.NoError(t, Struct(form{Password: "Passw0rd!"}))
}
