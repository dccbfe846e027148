package acceptance

import (
	"encoding/json"
	"net/http"
)

func (s *Suite) TestHealthEndpoint() {
	resp, err := http.Get(s.BaseURL + "/health")
	s.Require().NoError(err, "Failed to make request")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode, "Expected status 200")

	var body struct {
		Status      string `json:"status"`
		Timestamp   string `json:"timestamp"`
		Uptime      string `json:"uptime"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))

	s.Equal("OK", body.Status)
	s.NotEmpty(body.Timestamp)
	s.NotEmpty(body.Uptime)
	s.Equal("test", body.Environment)
	s.NotEmpty(body.Version)
}

func (s *Suite) TestMetricsEndpoint() {
	resp, err := http.Get(s.BaseURL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}
