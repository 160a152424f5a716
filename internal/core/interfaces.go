package core

import "context"

// PermissionSetter changes the group chat's send-messages permission
type PermissionSetter interface {
	SetLocked(ctx context.Context, locked bool) error
}

// Reprogrammer replaces the daily lock/unlock triggers
type Reprogrammer interface {
	Reprogram(config ScheduleConfig) error
}
