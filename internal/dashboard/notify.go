package dashboard

import (
	"errors"
	"log/slog"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// Level is the severity of a user notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch level {
	case LevelError:
		logger.Error(message)
	case LevelWarning:
		logger.Warn(message)
	default:
		logger.Info(message, "level", string(level))
	}
}

// ErrForbidden is returned when the viewer's role may not perform an action.
var ErrForbidden = errors.New("action not permitted for this role")

// ValidationError reports bad input caught before any request is sent.
type ValidationError = models.FieldError

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
