package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require := require.New(t)

	t.Run("Valid Document", func(t *testing.T) {
		store, err := Parse([]byte(`{
			"gw-east-1": {"username": "coa", "password": "s3cret"},
			"gw-west-1": {"username": "api", "password": ""}
		}`))
		require.NoError(err)
		require.Equal(2, store.Len())

		c, ok := store.Lookup("gw-east-1")
		require.True(ok)
		require.Equal("coa", c.Username)
		require.Equal("s3cret", c.Password)

		// empty password is legal
		c, ok = store.Lookup("gw-west-1")
		require.True(ok)
		require.Empty(c.Password)

		_, ok = store.Lookup("unknown")
		require.False(ok)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"gw": `))
		require.Error(err)
	})

	t.Run("Not An Object", func(t *testing.T) {
		_, err := Parse([]byte(`["gw"]`))
		require.Error(err)
	})

	t.Run("Missing Username", func(t *testing.T) {
		_, err := Parse([]byte(`{"gw": {"password": "x"}}`))
		require.Error(err)
		require.Contains(err.Error(), "gw")
	})

	t.Run("Entry Not An Object", func(t *testing.T) {
		_, err := Parse([]byte(`{"gw": "coa:s3cret"}`))
		require.Error(err)
	})
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(os.WriteFile(path, []byte(`{"gw": {"username": "coa"}}`), 0o600))

	store, err := Load(path)
	require.NoError(err)
	require.Equal(1, store.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(err)
}

func TestValidate(t *testing.T) {
	require := require.New(t)

	store, err := Parse([]byte(`{"gw-east-1": {"username": "coa"}}`))
	require.NoError(err)

	require.NoError(store.Validate([]string{"gw-east-1"}))
	require.NoError(store.Validate(nil))

	err = store.Validate([]string{"gw-east-1", "gw-north-9"})
	require.Error(err)
	require.Contains(err.Error(), "gw-north-9")
}
