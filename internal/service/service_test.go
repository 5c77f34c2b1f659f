package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickylist/internal/service"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want service.Color
	}{
		{"", service.DefaultColor},
		{"  ", service.DefaultColor},
		{"orange", service.Orange},
		{"Blue", service.Blue},
		{"gray", service.Grey},
		{"grey", service.Grey},
		{"GREEN", service.Green},
		{"red", service.Red},
		{"#ffd180", service.Orange},
		{"#AED581", service.Green},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := service.ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor_Unknown(t *testing.T) {
	_, err := service.ParseColor("purple")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidationFailed)
	assert.Contains(t, err.Error(), "purple")
}

func TestColorValidAndName(t *testing.T) {
	for _, c := range service.Palette {
		assert.True(t, c.Valid(), "%s should be valid", c)
		assert.NotEqual(t, string(c), c.Name())
	}
	assert.False(t, service.Color("#000000").Valid())
	assert.Equal(t, "#000000", service.Color("#000000").Name())
	assert.Equal(t, service.Blue, service.DefaultColor)
}

func TestRemoteError(t *testing.T) {
	err := &service.RemoteError{StatusCode: 401, Message: "Invalid credentials"}
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)

	notFound := &service.RemoteError{StatusCode: 404}
	assert.Equal(t, "server returned 404 Not Found", notFound.Error())
	assert.ErrorIs(t, notFound, service.ErrNotFound)

	serverErr := &service.RemoteError{StatusCode: 500}
	assert.False(t, errors.Is(serverErr, service.ErrNotFound))
	assert.False(t, errors.Is(serverErr, service.ErrNotLoggedIn))
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w", service.ErrAuthFailed, &service.RemoteError{StatusCode: 400, Message: "User already exists"})
	assert.Equal(t, "User already exists", service.UserMessage(wrapped, "fallback"))
	assert.Equal(t, "fallback", service.UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", service.UserMessage(&service.RemoteError{StatusCode: 500}, "fallback"))
}
