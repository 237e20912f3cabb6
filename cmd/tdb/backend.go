package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/franz/trackdb/internal/store"
	"github.com/franz/trackdb/internal/store/remotestore"
	"github.com/franz/trackdb/internal/util"
)

// openStore picks the backend: the remote synced service when a URL is
// configured, otherwise the local embedded database. Every command goes
// through the same TrackStore contract, so they never care which one they
// got.
func openStore() (store.TrackStore, error) {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	if remoteURL := viper.GetString("remote.url"); remoteURL != "" {
		util.InfoLog("Using remote track service: %s", remoteURL)
		return remotestore.New(&remotestore.Config{
			BaseURL: remoteURL,
			Token:   viper.GetString("remote.token"),
		})
	}

	dbPath := viper.GetString("db")
	util.DebugLog("Opening database: %s", dbPath)

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return s, nil
}
