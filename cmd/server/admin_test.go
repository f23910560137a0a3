package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPassword_Stdin(t *testing.T) {
	t.Setenv(adminPasswordEnv, "from-env")
	cmd := CreateAdminCmd()
	cmd.SetIn(strings.NewReader("s3cret\r\nignored\n"))
	require.NoError(t, cmd.Flags().Set("password-stdin", "true"))

	got, err := readPassword(cmd)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestReadPassword_Env(t *testing.T) {
	t.Setenv(adminPasswordEnv, "from-env")

	got, err := readPassword(CreateAdminCmd())
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestCreateAdmin_NoPasswordFlag(t *testing.T) {
	assert.Nil(t, CreateAdminCmd().Flags().Lookup("password"))
}
