package influxdb

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	http2 "github.com/influxdata/influxdb-client-go/v2/api/http"
)

// Sentinel errors for InfluxDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influxdb.ErrConnectionFailed) {
//	    // Server unreachable
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the server could not be reached,
	// either on connect or during a write.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrValueRejected indicates the server refused the point's values,
	// typically a field type conflict with an existing series.
	ErrValueRejected = errors.New("influxdb: value rejected")

	// ErrWriteFailed indicates a write failed for any other reason.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates InfluxDB integration is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)

// classifyWriteError maps a client write error onto the package sentinels.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *http2.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 0:
			return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		case apiErr.StatusCode == http.StatusBadRequest,
			apiErr.StatusCode == http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %w", ErrValueRejected, err)
		}
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}
