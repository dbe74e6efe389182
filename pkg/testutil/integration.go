package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/kvbridge/pkg/config"
)

// HostsEnv names the comma-separated seed hosts of a live cluster.
const HostsEnv = "KVBRIDGE_TEST_HOSTS"

// IntegrationTest skips t in short mode or when no live cluster is
// configured, and returns the seed hosts otherwise.
func IntegrationTest(t *testing.T) []config.Host {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	raw := os.Getenv(HostsEnv)
	if raw == "" {
		t.Skipf("Skipping integration test: %s is not set", HostsEnv)
	}
	var hosts []config.Host
	for _, s := range strings.Split(raw, ",") {
		h, err := config.ParseHost(strings.TrimSpace(s))
		require.NoError(t, err)
		hosts = append(hosts, h)
	}
	return hosts
}

// IntegrationTestSuite is the base of suites that run against a live cluster.
type IntegrationTestSuite struct {
	suite.Suite
	Hosts []config.Host

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// SetupSuite resolves the seed hosts and starts the suite deadline.
func (s *IntegrationTestSuite) SetupSuite() {
	s.Hosts = IntegrationTest(s.T())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()
}

// TearDownSuite cancels the suite context.
func (s *IntegrationTestSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
	s.T().Logf("Integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context.
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}
