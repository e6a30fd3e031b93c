package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faithledger/internal/services"
	"faithledger/internal/testutil"
)

func TestStepCount(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "default_one", args: nil, want: 1},
		{name: "explicit", args: []string{"3"}, want: 3},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "not_a_number", args: []string{"all"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stepCount(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var out bytes.Buffer
	require.NoError(t, seed(&out, db))
	assert.Equal(t, "Seeded 12 categories and 30 sub-categories\n", out.String())

	out.Reset()
	require.NoError(t, seed(&out, db))
	assert.Equal(t, "Seeded 0 categories and 0 sub-categories\n", out.String())
}

func TestCreateUser(t *testing.T) {
	valid := services.RegisterInput{
		Username:  "treasurer",
		Email:     "treasurer@example.org",
		FirstName: "Anna",
		LastName:  "George",
		Password1: "Offering#2024",
		Password2: "Offering#2024",
	}

	t.Run("created", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		var out bytes.Buffer
		require.NoError(t, createUser(&out, services.NewUserService(db), valid))
		assert.Equal(t, "Created user treasurer <treasurer@example.org>\n", out.String())
	})

	t.Run("lists_every_field_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		in := valid
		in.FirstName = ""
		in.Password1, in.Password2 = "", ""

		var out bytes.Buffer
		err := createUser(&out, services.NewUserService(db), in)
		require.Error(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "first_name: First name is required.", strings.TrimSpace(lines[0]))
		assert.Equal(t, "password1: Password is required.", strings.TrimSpace(lines[1]))
	})

	t.Run("duplicate_username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		users := services.NewUserService(db)
		require.NoError(t, createUser(&bytes.Buffer{}, users, valid))

		again := valid
		again.Email = "other@example.org"
		var out bytes.Buffer
		require.Error(t, createUser(&out, users, again))
		assert.Contains(t, out.String(), "This username is already taken.")
	})
}
