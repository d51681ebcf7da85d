package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level.zerolog()).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level LogLevel) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	return NewZerolog(consoleWriter, level)
}

// New picks the console writer for "console" and JSON on stdout otherwise.
func New(format string, level LogLevel) *ZerologAdapter {
	if format == "console" {
		return NewConsoleLogger(level)
	}
	return NewZerolog(os.Stdout, level)
}

func (z *ZerologAdapter) WithComponent(component string) Logger {
	return &ZerologAdapter{logger: z.logger.With().Str("component", component).Logger()}
}

func (z *ZerologAdapter) Info(message string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(message)
}

func (z *ZerologAdapter) Error(message string, err error, fields map[string]interface{}) {
	z.logger.Error().Err(err).Fields(fields).Msg(message)
}

func (z *ZerologAdapter) Warning(message string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(message)
}

func (z *ZerologAdapter) Debug(message string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(message)
}
