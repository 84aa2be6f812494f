//go:build unit

package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kbridge-io/kbridge/logger"
	mocklogger "github.com/kbridge-io/kbridge/logger/mock"
)

func TestExpose_LogsServerFailure(t *testing.T) {
	ml := mocklogger.New()

	// An address without a port can never bind.
	Expose("not-an-address", ml)

	require.Eventually(
		t, func() bool {
			for _, entry := range ml.Entries() {
				if entry.Level == logger.ErrorLevel && entry.Message == "Metrics server stopped" {
					return true
				}
			}
			return false
		}, 3*time.Second, 10*time.Millisecond, "bind failure should be logged",
	)
}

func TestExpose_NilLogger(t *testing.T) {
	// Must not panic without a logger.
	Expose("also-not-an-address", nil)
	time.Sleep(20 * time.Millisecond)
}
