package audit

import (
	"log"
)

// Logger records security-relevant events (logins, attendance writes,
// broadcasts). It is a plain side-effecting collaborator: enabled or
// disabled by configuration, never toggled at runtime.
type Logger struct {
	enabled bool
}

// New creates a Logger. When enabled is false every Record call is a no-op.
func New(enabled bool) *Logger {
	return &Logger{enabled: enabled}
}

// Enabled reports whether audit logging is active.
func (l *Logger) Enabled() bool { return l.enabled }

// Record writes one audit line for the acting user.
func (l *Logger) Record(actorID, actorRole, action, detail string) {
	if !l.enabled {
		return
	}
	log.Printf("audit: actor=%s role=%s action=%s detail=%s", actorID, actorRole, action, detail)
}
