package membership

// FreezeRecord is one suspension window of a subscription.
type FreezeRecord struct {
	Start   Date
	End     Date
	Reason  string
	Comment string
	Confirm bool
}

// Days is the inclusive length of the window.
func (f FreezeRecord) Days() int {
	return f.Start.DaysUntil(f.End) + 1
}

// sameEpisode compares start, end and reason only; comment and confirmation
// do not distinguish episodes.
func (f FreezeRecord) sameEpisode(o FreezeRecord) bool {
	return f.Start.Equal(o.Start) && f.End.Equal(o.End) && f.Reason == o.Reason
}

// FreezePolicy is the administrator-owned freeze configuration.
type FreezePolicy struct {
	MaxDays        int
	Reasons        []string
	RequireConfirm bool
}

const DefaultMaxFreezeDays = 30

func DefaultFreezePolicy() FreezePolicy {
	return FreezePolicy{MaxDays: DefaultMaxFreezeDays}
}

func (p FreezePolicy) allows(reason string) bool {
	for _, r := range p.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// ValidateFreeze checks a freeze attempt against the policy.
func ValidateFreeze(attempt FreezeRecord, policy FreezePolicy) error {
	if attempt.Start.IsZero() || attempt.End.IsZero() {
		return Invalid(KindFreeze, "freeze dates are required")
	}
	if attempt.End.Before(attempt.Start) {
		return Invalid(KindChronology, "freeze end cannot be before freeze start")
	}
	if policy.MaxDays > 0 && attempt.Days() > policy.MaxDays {
		return Invalid(KindFreeze, "maximum freeze length is %d days", policy.MaxDays)
	}
	if len(policy.Reasons) > 0 && !policy.allows(attempt.Reason) {
		return Invalid(KindFreeze, "freeze reason is required")
	}
	if policy.RequireConfirm && !attempt.Confirm {
		return Invalid(KindFreeze, "freeze confirmation is required")
	}
	return nil
}

// ApplyFreeze makes attempt the current freeze and appends it to the history
// unless it repeats the last recorded episode. The input history is not modified.
func ApplyFreeze(history []FreezeRecord, attempt FreezeRecord) (*FreezeRecord, []FreezeRecord) {
	out := append([]FreezeRecord(nil), history...)
	if n := len(out); n == 0 || !out[n-1].sameEpisode(attempt) {
		out = append(out, attempt)
	}
	current := attempt
	return &current, out
}
