package workflow

// NewApprovalMachine builds the approval lifecycle machine positioned at
// current. PENDING and ON_HOLD both accept approve/reject/hold; APPROVED and
// REJECTED accept nothing. Holding an already held approval refreshes the
// action note without changing state.
func NewApprovalMachine(current State) (StateMachine, error) {
	builder := NewBuilder().
		Permit(StatePending, TriggerApprove, StateApproved).
		Permit(StatePending, TriggerReject, StateRejected).
		Permit(StatePending, TriggerHold, StateOnHold).
		Permit(StateOnHold, TriggerApprove, StateApproved).
		Permit(StateOnHold, TriggerReject, StateRejected).
		Permit(StateOnHold, TriggerHold, StateOnHold)

	return builder.Build(current)
}

// TriggerForAction maps a decision action (approve/reject/hold) to a trigger
func TriggerForAction(action string) (Trigger, error) {
	switch action {
	case "approve":
		return TriggerApprove, nil
	case "reject":
		return TriggerReject, nil
	case "hold":
		return TriggerHold, nil
	default:
		return "", ErrUnknownTrigger
	}
}
