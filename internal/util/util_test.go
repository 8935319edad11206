package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mathematical Foundations", "mathematical_foundations"},
		{"Work, Energy, and Power", "work_energy_and_power"},
		{"Forces and Newton's Laws", "forces_and_newton_s_laws"},
		{"Sound & Light", "sound_and_light"},
		{"  Leading and trailing  ", "leading_and_trailing"},
		{"Physics", "physics"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestConceptID(t *testing.T) {
	assert.Equal(t, "physics_0001", ConceptID("Physics", 1))
	assert.Equal(t, "physics_0142", ConceptID("Physics", 142))
	assert.Equal(t, "computer_science_0003", ConceptID("Computer Science", 3))
}

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()

	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
