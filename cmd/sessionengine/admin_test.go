package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/faforever/game-session-engine/internal/config"
)

// adminSuite shares one admin router across its test methods, grounded on
// shared/testing/testing.go's BaseTestSuite (gin router + httptest server
// set up once in SetupSuite, torn down once in TearDownSuite).
type adminSuite struct {
	suite.Suite
	server *httptest.Server
}

func (s *adminSuite) SetupSuite() {
	reg := prometheus.NewRegistry()
	logger := logrus.New()
	logger.SetOutput(httptest.NewRecorder().Body)
	srv := newAdminServer(&config.Config{AdminPort: 0, Environment: "test"}, logger, reg)
	s.server = httptest.NewServer(srv.Handler)
}

func (s *adminSuite) TearDownSuite() {
	s.server.Close()
}

func (s *adminSuite) TestHealthReportsOK() {
	resp, err := http.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *adminSuite) TestMetricsExposesPrometheusFormat() {
	resp, err := http.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(adminSuite))
}
