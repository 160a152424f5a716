package logging

import (
	"context"
	"log/slog"
	"time"

	"nightlock/internal/core"
)

// ActuatorLogger wraps a PermissionSetter and logs every call
type ActuatorLogger struct {
	actuator core.PermissionSetter
	logger   *slog.Logger
}

// NewActuatorLogger creates a new logging decorator for the permission actuator
func NewActuatorLogger(actuator core.PermissionSetter, logger *slog.Logger) core.PermissionSetter {
	return &ActuatorLogger{
		actuator: actuator,
		logger:   logger.With("interface", "PermissionSetter"),
	}
}

func (l *ActuatorLogger) SetLocked(ctx context.Context, locked bool) error {
	start := time.Now()
	l.logger.Info("SetLocked called",
		"locked", locked)

	err := l.actuator.SetLocked(ctx, locked)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("SetLocked failed",
			"locked", locked,
			"duration", duration,
			"error", err)
		return err
	}

	l.logger.Info("SetLocked completed",
		"locked", locked,
		"duration", duration)

	return nil
}
