package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

type profile struct {
	Name  string
	Email string `masq:"secret"`
}

func TestNewLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.FormatJSON, slog.LevelInfo)

	logger.Info("joined", "profile", profile{Name: "Alice", Email: "alice@example.com"})

	gt.String(t, buf.String()).Contains("Alice")
	gt.String(t, buf.String()).NotContains("alice@example.com")
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.FormatJSON, slog.LevelWarn)

	logger.Info("hidden")
	gt.Value(t, buf.Len()).Equal(0)

	logger.Warn("shown")
	gt.String(t, buf.String()).Contains("shown")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, logging.FormatJSON, slog.LevelInfo)

	ctx := logging.With(context.Background(), logger)
	gt.Value(t, logging.From(ctx)).Equal(logger)
	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
}

func TestParseLevelAndFormat(t *testing.T) {
	level, err := logging.ParseLevel("debug")
	gt.NoError(t, err)
	gt.Value(t, level).Equal(slog.LevelDebug)

	_, err = logging.ParseLevel("loud")
	gt.Error(t, err)

	format, err := logging.ParseFormat("json")
	gt.NoError(t, err)
	gt.Value(t, format).Equal(logging.FormatJSON)

	_, err = logging.ParseFormat("xml")
	gt.Error(t, err)
}
