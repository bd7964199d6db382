package workflow

// Trigger represents a decision event that can cause a state transition
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
	TriggerHold    Trigger = "HOLD"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
