package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger writes one structured record per executed tool call, with
// hashed user identifiers. The execution service calls it unconditionally,
// success or failure.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogToolCall records one tool dispatch. detail comes from the tool's own
// audit formatter; outcome is executed/failed/started/staged/duplicate.
func (a *AuditLogger) LogToolCall(
	toolName, userID, conversationID string,
	outcome, detail string,
	durationMs int64,
	success bool,
	errMsg string,
) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "tool_audit").
		Str("tool", toolName).
		Str("user_hash", hashStr(userID)[:16]).
		Str("conversation_id", conversationID).
		Str("outcome", outcome).
		Str("detail", detail).
		Int64("duration_ms", durationMs).
		Bool("success", success)
	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

// LogTurn records one conversational turn against the model.
func (a *AuditLogger) LogTurn(userID, conversationID string, toolsUsed []string, durationMs int64) {
	if !a.enabled {
		return
	}
	log.Info().
		Str("event", "turn_audit").
		Str("user_hash", hashStr(userID)[:16]).
		Str("conversation_id", conversationID).
		Strs("tools_used", toolsUsed).
		Int64("duration_ms", durationMs).
		Msg("turn audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
