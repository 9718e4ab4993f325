package domain

// quoteTransitions is the closed set of allowed quote status moves initiated
// through the status endpoint. Acceptance and expiry are separate paths:
// accepted is reached only via the public accept operation, expired only via
// the sweep or a lazy public fetch.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:     {QuoteStatusPublished, QuoteStatusDeleted},
	QuoteStatusPublished: {QuoteStatusDraft, QuoteStatusDeleted},
	QuoteStatusAccepted:  {},
	QuoteStatusRejected:  {},
	QuoteStatusExpired:   {},
}

// CanTransitionTo reports whether a status endpoint move from s to target is allowed
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status endpoint moves are allowed
func (s QuoteStatus) IsTerminal() bool {
	return len(quoteTransitions[s]) == 0
}

var contractTransitions = map[ContractStatus][]ContractStatus{
	// draft -> signed covers installer onboarding, which signs in one step
	ContractStatusDraft:            {ContractStatusPendingSignature, ContractStatusSent, ContractStatusSigned},
	ContractStatusPendingSignature: {ContractStatusSent, ContractStatusDraft},
	ContractStatusSent:             {ContractStatusSigned, ContractStatusDraft},
	ContractStatusSigned:           {},
}

// CanTransitionTo reports whether a contract status move is allowed
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	for _, allowed := range contractTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

var incidentTransitions = map[IncidentStatus][]IncidentStatus{
	IncidentStatusPending:    {IncidentStatusApproved, IncidentStatusRejected},
	IncidentStatusApproved:   {IncidentStatusInProgress, IncidentStatusRejected},
	IncidentStatusInProgress: {IncidentStatusCompleted, IncidentStatusRejected},
	IncidentStatusCompleted:  {},
	IncidentStatusRejected:   {},
}

// CanTransitionTo reports whether an incident status move is allowed
func (s IncidentStatus) CanTransitionTo(target IncidentStatus) bool {
	for _, allowed := range incidentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
