package storage

import (
	"net/url"
	"strings"

	"boscoin.io/sctester/lib/errors"
)

// Config selects the leveldb storage. Only `memory://` is known; the ledger
// working set never outlives the process.
type Config struct {
	Scheme string
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, setLevelDBCoreError(err)
	}

	config := &Config{Scheme: strings.ToLower(u.Scheme)}
	switch config.Scheme {
	case "memory":
	default:
		return nil, errors.StorageCoreError.Clone().SetData("storage", s)
	}

	return config, nil
}
