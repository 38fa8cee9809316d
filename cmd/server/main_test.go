package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/evlocator/backend-go/internal/config"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return fmt.Sprint(l.Addr().(*net.TCPAddr).Port)
}

func TestRunServesAndShutsDown(t *testing.T) {
	seed, err := json.Marshal([]models.Station{
		{ID: 1, Name: "Hebbal", Location: "Outer Ring Road", Latitude: 13.0358, Longitude: 77.5970, Cars: 2},
	})
	require.NoError(t, err)
	seedPath := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	port := freePort(t)
	cfg := config.New(
		config.WithEnvironment("test"),
		config.WithPort(port),
		config.WithSeedPath(seedPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	url := "http://127.0.0.1:" + port + "/stations/1"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var st models.Station
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "Hebbal", st.Name)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := config.New(config.WithStorageType(config.StorageFeed))

	err := run(context.Background(), cfg)
	assert.Error(t, err)
}
