// Package zerolog adapts a zerolog.Logger to licensechain.Logger.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/licensechain/licensechain-go/pkg/licensechain"
)

// Logger implements licensechain.Logger using zerolog.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps logger. Level filtering is left to zerolog.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Debug(msg string, fields ...licensechain.Field) {
	l.log(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...licensechain.Field) {
	l.log(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...licensechain.Field) {
	l.log(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...licensechain.Field) {
	l.log(l.logger.Error(), msg, fields)
}

func (l *Logger) log(event *zerolog.Event, msg string, fields []licensechain.Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			event = event.AnErr(f.Key, v)
		case string:
			event = event.Str(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	event.Msg(msg)
}
