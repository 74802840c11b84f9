//go:build integration
// +build integration

package client_test

import (
	"net/http"
	"os"
	"testing"
	"time"
)

const defaultBackendURL = "http://localhost:3001"

func backendURL() string {
	if u := os.Getenv("SURVEY_TEST_BACKEND_URL"); u != "" {
		return u
	}
	return defaultBackendURL
}

// TestMain waits for the survey backend health endpoint before running tests.
func TestMain(m *testing.M) {
	waitForHealthy(backendURL(), 30*time.Second)
	os.Exit(m.Run())
}

func waitForHealthy(baseURL string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	panic("survey backend not healthy at /api/health within timeout")
}
