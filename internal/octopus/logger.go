package octopus

import (
	"fmt"

	"github.com/pisolar/energylog/internal/infrastructure/logging"
)

// restyLogger routes the HTTP library's own messages into the run log.
type restyLogger struct {
	log *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
