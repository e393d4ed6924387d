package circuit_breaker_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/booking-service/pkg/circuit_breaker"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	fail := func() error { return errors.New("service error") }

	const (
		recordLength     = 10
		timeout          = 50 * time.Millisecond
		percentile       = 0.5
		recoveryRequests = 3
	)

	cb := circuit_breaker.New(recordLength, timeout, percentile, recoveryRequests)

	for i := 0; i < recordLength; i++ {
		require.NoError(t, cb.Call(ok))
	}

	// fill the window past the failure percentile
	for i := 0; i < recordLength/2; i++ {
		require.Error(t, cb.Call(fail))
	}
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)

	// after the timeout the breaker probes and recovers
	time.Sleep(timeout + 10*time.Millisecond)
	for i := 0; i < recoveryRequests+1; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.NoError(t, cb.Call(ok))

	// a failure in half-open flips it back to open
	for i := 0; i < recordLength; i++ {
		_ = cb.Call(fail)
	}
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)
	time.Sleep(timeout + 10*time.Millisecond)
	require.Error(t, cb.Call(fail))
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)

	cb.Reset()
	require.NoError(t, cb.Call(ok))
}
