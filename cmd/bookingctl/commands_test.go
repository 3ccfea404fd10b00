package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/livestock_booking/internal/platform/auth"
)

func TestTokenCmd(t *testing.T) {
	sub := uuid.NewString()

	var out bytes.Buffer
	cmd := tokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--secret", "dev", "--sub", sub, "--email", "farmer@example.com"})

	require.NoError(t, cmd.Execute())

	claims, err := auth.ParseValidate("dev", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Sub)
	assert.Equal(t, "farmer", claims.Role)
	assert.Equal(t, "farmer@example.com", claims.Email)
}

func TestTokenCmd_Rejects(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	tests := map[string][]string{
		"missing secret": {"--sub", uuid.NewString()},
		"bad subject":    {"--secret", "dev", "--sub", "farmer-1"},
		"missing sub":    {"--secret", "dev"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := tokenCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(args)

			assert.Error(t, cmd.Execute())
		})
	}
}
