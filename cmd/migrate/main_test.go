package main

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmigrations "github.com/wolfman30/salon-bot/migrations"
)

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", cmd.name)

	cmd, err = parseCommand([]string{"force", "1"})
	require.NoError(t, err)
	assert.Equal(t, command{name: "force", version: 1}, cmd)

	for _, args := range [][]string{{"force"}, {"force", "x"}, {"sideways"}} {
		_, err := parseCommand(args)
		assert.Error(t, err, args)
	}
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	src, err := iofs.New(appmigrations.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	body, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, "chat_log", ident)
}
