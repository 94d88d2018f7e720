package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Init(environment string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout

	if environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}

func WithRequestID(requestID string) zerolog.Logger {
	return log.With().Str("request_id", requestID).Logger()
}

func WithWebhookKey(key string) zerolog.Logger {
	return log.With().Str("webhook_key", key).Logger()
}

func WithFormKey(key string) zerolog.Logger {
	return log.With().Str("form_key", key).Logger()
}

func WithDeliveryID(deliveryID string) zerolog.Logger {
	return log.With().Str("delivery_id", deliveryID).Logger()
}
