package safe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"syscall"

	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

// Close closes closer and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write sends data to a response and logs a failure. A nil writer is ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logFailure(ctx, "Failed to write", err, n)
	}
}

// Copy streams src into dst and logs a failure
func Copy(ctx context.Context, dst io.Writer, src io.Reader) {
	if dst == nil || src == nil {
		return
	}
	if n, err := io.Copy(dst, src); err != nil {
		logFailure(ctx, "Failed to copy", err, int(n))
	}
}

// logFailure logs a peer that went away mid-response at debug level only
func logFailure(ctx context.Context, msg string, err error, written int) {
	logger := logging.From(ctx)
	if isDisconnect(err) {
		logger.Debug(msg, slog.Any("error", err), slog.Int("written", written))
		return
	}
	logger.Error(msg, slog.Any("error", err), slog.Int("written", written))
}

func isDisconnect(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
