package common

import (
	stderrors "errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	logging "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"

	"boscoin.io/sctester/lib/errors"
)

func TestConfigDefault(t *testing.T) {
	c := NewConfig()
	require.Equal(t, DefaultLedgerPath, c.Ledger)
	require.Equal(t, DefaultBudget, c.Budget)
	require.Equal(t, CoinsPolicyStrict, c.CoinsPolicy)
	require.Equal(t, DefaultLogLevel, c.Level())
	require.NoError(t, c.Validate())
}

func TestConfigLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sctester.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
ledger: /tmp/showme.json
budget: 1000
log-level: debug
coins-policy: lenient
`), 0644))

	c, err := NewConfig().LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/showme.json", c.Ledger)
	require.Equal(t, uint64(1000), c.Budget)
	require.Equal(t, logging.LvlDebug, c.Level())
	require.Equal(t, CoinsPolicyLenient, c.CoinsPolicy)
	// untouched keys keep their value
	require.Empty(t, c.MetricsFile)

	require.NoError(t, ioutil.WriteFile(path, []byte("coins-policy: killme\n"), 0644))
	_, err = NewConfig().LoadConfigFile(path)
	require.True(t, stderrors.Is(err, errors.InvalidInvocation))

	_, err = NewConfig().LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestConfigLoadEnv(t *testing.T) {
	setenv := func(key, value string) {
		old, found := os.LookupEnv(key)
		os.Setenv(key, value)
		t.Cleanup(func() {
			if found {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	setenv(EnvPrefix+"LEDGER", "findme.msgpack")
	setenv(EnvPrefix+"BUDGET", "77")

	c, err := NewConfig().LoadEnv()
	require.NoError(t, err)
	require.Equal(t, "findme.msgpack", c.Ledger)
	require.Equal(t, uint64(77), c.Budget)

	setenv(EnvPrefix+"BUDGET", "seventy")
	_, err = NewConfig().LoadEnv()
	require.True(t, stderrors.Is(err, errors.InvalidInvocation))
}

func TestConfigValidate(t *testing.T) {
	c := NewConfig()
	c.LogLevel = "loud"
	require.True(t, stderrors.Is(c.Validate(), errors.InvalidInvocation))

	c = NewConfig()
	c.Ledger = ""
	require.True(t, stderrors.Is(c.Validate(), errors.InvalidInvocation))
}
