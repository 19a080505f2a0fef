package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"widget", "Widget"},
		{"  demo   widget ", "Demo Widget"},
		{"DEMO WIDGET", "Demo Widget"},
		{"maria silva", "Maria Silva"},
		{"   ", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeName(c.in), "input %q", c.in)
	}
}

func TestUUIDint64Monotonic(t *testing.T) {
	a := UUIDint64()
	b := UUIDint64()
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.True(t, CheckPassword(hashed, "s3cret"))
	assert.False(t, CheckPassword(hashed, "wrong"))
}
