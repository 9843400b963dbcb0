package services

import (
	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

// CallSignalingRelay forwards call lifecycle and SDP/ICE payloads between two
// identified parties without looking inside them. Delivery is fire-and-forget:
// an absent target drops the event silently and the caller's own timeout is
// the only signal that the other side is unreachable.
type CallSignalingRelay struct {
	registry *PresenceRegistry
	logger   *utils.Logger
}

func NewCallSignalingRelay(registry *PresenceRegistry, logger *utils.Logger) *CallSignalingRelay {
	return &CallSignalingRelay{
		registry: registry,
		logger:   logger,
	}
}

// Forward annotates the signal with the caller's identity and delivers it to
// the target's connection, if the target is online.
func (r *CallSignalingRelay) Forward(event string, caller Connection, signal models.CallSignal) {
	signal.FromUserID = caller.UserID()

	target, ok := r.registry.Lookup(signal.ToUserID)
	if !ok {
		r.logger.Debug("call signal dropped, target offline",
			"event", event, "call_id", signal.CallID, "to_user_id", signal.ToUserID)
		return
	}

	target.Emit(event, signal)
}

// End fans the hang-up out to every listed participant except the caller.
func (r *CallSignalingRelay) End(caller Connection, event models.CallEndEvent) {
	event.FromUserID = caller.UserID()

	for _, participantID := range event.Participants {
		if participantID == event.FromUserID {
			continue
		}
		if conn, ok := r.registry.Lookup(participantID); ok {
			conn.Emit(models.EventCallEnd, event)
		}
	}
}
