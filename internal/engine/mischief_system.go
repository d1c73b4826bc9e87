package engine

import (
	"fmt"

	"github.com/MRamiBalles/PetGrooming/internal/domain/rules"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// MischiefSystem accumulates the pets' mischief score.
// The value only grows during a match and is reset at match start.
type MischiefSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	value       int
	threshold   int
	alertOffset int
	alertActive bool
}

// NewMischiefSystem creates an empty meter.
func NewMischiefSystem(eventLog *events.EventLog, log *logger.Logger) *MischiefSystem {
	return &MischiefSystem{eventLog: eventLog, logger: log}
}

// Start zeroes the meter with the threshold for this match.
func (ms *MischiefSystem) Start(threshold, alertOffset int) {
	ms.value = 0
	ms.threshold = threshold
	ms.alertOffset = alertOffset
	ms.alertActive = false
}

// Add raises the meter. Non-positive amounts are ignored. The first time the
// value reaches the alert level, ALERT_STARTED is recorded once.
func (ms *MischiefSystem) Add(amount int, actorID, cause string) bool {
	if amount <= 0 {
		return false
	}
	ms.value += amount
	payload := events.MischiefPayload{Amount: amount, Value: ms.value, Threshold: ms.threshold, Cause: cause}
	ms.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeMischiefAdded,
		ActorID: actorID,
		Payload: payload,
	})

	if !ms.alertActive && rules.IsAlert(ms.value, ms.threshold, ms.alertOffset) {
		ms.alertActive = true
		ms.logger.Warn("ALERT: mischief %d/%d", ms.value, ms.threshold)
		ms.eventLog.Append(events.GameEvent{
			Type:    events.EventTypeAlertStarted,
			ActorID: events.ActorSystem,
			Payload: payload,
		})
	}
	ms.logger.Event(string(events.EventTypeMischiefAdded), actorID, fmt.Sprintf("+%d (%s) = %d", amount, cause, ms.value))
	return true
}

// ThresholdReached reports whether the pets have won on mischief.
func (ms *MischiefSystem) ThresholdReached() bool {
	return ms.threshold > 0 && ms.value >= ms.threshold
}

// Reset clears the meter.
func (ms *MischiefSystem) Reset() {
	ms.Start(0, 0)
}

func (ms *MischiefSystem) Value() int        { return ms.value }
func (ms *MischiefSystem) Threshold() int    { return ms.threshold }
func (ms *MischiefSystem) AlertActive() bool { return ms.alertActive }
