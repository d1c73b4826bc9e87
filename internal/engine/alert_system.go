package engine

import (
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
)

// AlertSystem applies the Groomer speed bonus once the alert state starts.
// It is a SUBSCRIBER: it only reacts to ALERT_STARTED.
type AlertSystem struct {
	logger *logger.Logger
	bonus  float64
	active bool
}

// NewAlertSystem subscribes to ALERT_STARTED on eventLog.
func NewAlertSystem(eventLog *events.EventLog, log *logger.Logger, speedBonus float64) *AlertSystem {
	as := &AlertSystem{logger: log, bonus: speedBonus}
	eventLog.Subscribe(events.EventTypeAlertStarted, as.OnAlertStarted)
	return as
}

// OnAlertStarted is the subscriber hook for ALERT_STARTED.
func (as *AlertSystem) OnAlertStarted(events.GameEvent) {
	if as.active {
		return
	}
	as.active = true
	as.logger.Info("alert active: groomer speed x%.2f", 1+as.bonus)
}

// Active reports whether the bonus applies.
func (as *AlertSystem) Active() bool { return as.active }

// Bonus is the configured fractional speed bonus.
func (as *AlertSystem) Bonus() float64 { return as.bonus }

// SpeedMultiplier is 1 + bonus while active, else 1.
func (as *AlertSystem) SpeedMultiplier() float64 {
	if as.active {
		return 1 + as.bonus
	}
	return 1
}

// Reset clears the alert state for a new match.
func (as *AlertSystem) Reset() { as.active = false }
