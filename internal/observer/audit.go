// Package observer holds the factory observers that are not stores.
package observer

import (
	"context"

	"github.com/weiawesome/genguid/internal/packet"
	"github.com/weiawesome/genguid/pkg/log"
)

// Audit actions.
const (
	ActionGenerate = "guid.generate"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
)

// Audit emits one structured audit entry per generated identifier via the
// context logger.
type Audit struct {
	action string
}

// NewAudit creates an audit observer.
func NewAudit() *Audit { return &Audit{action: ActionGenerate} }

func (a *Audit) NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, a.action).
		Int64(log.FieldSequence, p.SequenceNumber).
		Str(log.FieldGUID, p.Value.String()).
		Time("generated_at", p.Timestamp).
		Msg("identifier generated")
	return nil
}
