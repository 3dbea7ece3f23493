// Package notify defines the local-notification collaborator: the core
// decides WHEN to surface a notification (suppression, freshness), the
// platform decides HOW.
package notify

import "go.uber.org/zap"

// Notifier surfaces an immediate local notification on the device.
type Notifier interface {
	Notify(title, body string, payload map[string]string)
}

// Logger is the default Notifier: it writes the notification to the log.
// Platform builds replace it with the OS notification scheduler.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a log-backed notifier.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

// Notify implements Notifier.
func (l *Logger) Notify(title, body string, payload map[string]string) {
	fields := []zap.Field{zap.String("title", title), zap.String("body", body)}
	for k, v := range payload {
		fields = append(fields, zap.String(k, v))
	}
	l.logger.Info("local notification", fields...)
}
