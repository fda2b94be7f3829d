package progress

// TargetPolicy holds the configured hour targets per reporting period.
// A target of zero means "no goal for this period"; the period still
// aggregates but is excluded from active-target views.
type TargetPolicy struct {
	// DailyHours is the target for one calendar day.
	DailyHours int `json:"daily_hours"`

	// WeeklyHours is the target for one calendar week.
	WeeklyHours int `json:"weekly_hours"`

	// MonthlyHours is the target for one calendar month.
	MonthlyHours int `json:"monthly_hours"`
}

// Validate checks that no target is negative.
func (p TargetPolicy) Validate() error {
	if p.DailyHours < 0 || p.WeeklyHours < 0 || p.MonthlyHours < 0 {
		return ErrNegativeTarget
	}
	return nil
}

// TargetHours returns the configured hours for a period.
func (p TargetPolicy) TargetHours(period Period) int {
	switch period {
	case PeriodDay:
		return p.DailyHours
	case PeriodWeek:
		return p.WeeklyHours
	case PeriodMonth:
		return p.MonthlyHours
	default:
		return 0
	}
}

// HasTarget reports whether the period has an active (non-zero) target.
func (p TargetPolicy) HasTarget(period Period) bool {
	return p.TargetHours(period) > 0
}

// ActivePeriods returns the periods with a non-zero target.
func (p TargetPolicy) ActivePeriods() []Period {
	active := make([]Period, 0, 3)
	for _, period := range AllPeriods() {
		if p.HasTarget(period) {
			active = append(active, period)
		}
	}
	return active
}
