/*
presets.go - Ready-made policy JSON

Convenience builders for the usual leave types. These return JSON rather
than structs so the same strings can seed the database, feed the factory,
or serve as admin-UI starting points.
*/
package policy

import (
	"fmt"

	"github.com/warp/leave-engine/leave"
)

// AnnualLeaveJSON builds the standard vacation policy: monthly accrual,
// no upfront grant.
func AnnualLeaveJSON(name string, monthlyRate float64) string {
	return fmt.Sprintf(`{
		"key": "annual",
		"name": %q,
		"monthly_rate": %g
	}`, name, monthlyRate)
}

// SickLeaveJSON builds a sick-leave policy with an upfront yearly grant.
func SickLeaveJSON(name string, annualDays float64) string {
	return fmt.Sprintf(`{
		"key": "sick",
		"name": %q,
		"annual_days": %g
	}`, name, annualDays)
}

// CasualLeaveJSON builds a casual-leave policy with monthly accrual.
func CasualLeaveJSON(name string, monthlyRate float64) string {
	return fmt.Sprintf(`{
		"key": "casual",
		"name": %q,
		"monthly_rate": %g
	}`, name, monthlyRate)
}

// OtherLeaveJSON builds the catch-all type. It usually carries no accrual,
// so requests cost balance already banked or land on loss of pay.
func OtherLeaveJSON(name string) string {
	return fmt.Sprintf(`{
		"key": "other",
		"name": %q
	}`, name)
}

// CompOffJSON builds the compensatory-off policy. The counter is earned
// through grants for extra days worked, never through accrual.
func CompOffJSON(name string) string {
	return fmt.Sprintf(`{
		"key": "compensatory",
		"name": %q
	}`, name)
}

// BirthdayLeaveJSON builds the birthday-leave policy: one employer-paid
// day, no accrual.
func BirthdayLeaveJSON(name string) string {
	return fmt.Sprintf(`{
		"key": "birthday",
		"name": %q
	}`, name)
}

// DefaultSet returns the full preset catalog with typical rates: 1.5
// annual days a month, 6 sick days upfront, half a casual day a month.
func DefaultSet() Set {
	f := NewFactory()
	set := make(Set)
	for _, doc := range []string{
		AnnualLeaveJSON("Annual Leave", 1.5),
		SickLeaveJSON("Sick Leave", 6),
		CasualLeaveJSON("Casual Leave", 0.5),
		OtherLeaveJSON("Other Leave"),
		CompOffJSON("Compensatory Off"),
		BirthdayLeaveJSON("Birthday Leave"),
	} {
		p, err := f.ParsePolicy(doc)
		if err != nil {
			panic(fmt.Sprintf("preset policy is malformed: %v", err))
		}
		set.Put(p)
	}
	return set
}

// ResourceName returns the display name for a type key, falling back to
// the key itself for unconfigured types.
func (s Set) ResourceName(key leave.TypeKey) string {
	if p, ok := s[key]; ok {
		return p.Name
	}
	return string(key)
}
