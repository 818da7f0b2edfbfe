package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var goSipIDPattern = regexp.MustCompile(`^GS-[0-9A-F]{6}-[0-9A-F]{6}$`)

func TestNewGoSipID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewGoSipID()
		assert.Regexp(t, goSipIDPattern, id)
	}
}

func TestBeforeCreate_FillsGeneratedFields(t *testing.T) {
	u := &User{Name: "Ari", Email: "ari@example.com"}

	err := u.BeforeCreate(nil)
	assert.NoError(t, err)

	assert.Regexp(t, goSipIDPattern, u.GoSipID)
	assert.Contains(t, colors, u.Color, "color is drawn from the palette")
	assert.Equal(t, DefaultProfilePic, u.ProfilePic)
}

func TestBeforeCreate_PreservesExistingValues(t *testing.T) {
	u := &User{
		GoSipID:    "GS-0A0A0A-0A0A0A",
		Color:      "#123456",
		ProfilePic: "https://cdn/custom.png",
	}

	err := u.BeforeCreate(nil)
	assert.NoError(t, err)

	assert.Equal(t, "GS-0A0A0A-0A0A0A", u.GoSipID)
	assert.Equal(t, "#123456", u.Color)
	assert.Equal(t, "https://cdn/custom.png", u.ProfilePic)
}

func TestSummary_OmitsPrivateFields(t *testing.T) {
	u := &User{
		GoSipID:    "GS-0A0A0A-0A0A0A",
		Name:       "Ari",
		Email:      "ari@example.com",
		Password:   "bcrypt-hash",
		ProfilePic: "https://cdn/custom.png",
		Color:      "#123456",
	}

	s := u.Summary()
	assert.Equal(t, "Ari", s.Name)
	assert.Equal(t, "GS-0A0A0A-0A0A0A", s.GoSipID)
	assert.Equal(t, "https://cdn/custom.png", s.ProfilePic)
	assert.Equal(t, "#123456", s.Color)
}
