/*
Package policy defines per-type leave policies.

PURPOSE:
  A Policy says how one leave type earns days: the monthly accrual rate
  that feeds the evaluator's rate bucket, and an optional upfront annual
  grant posted at the start of the year. Policies carry no allocation
  rules; the balance-first/rate-second/LOP-last priority is fixed in the
  evaluation core and is not a configuration point.

  Special types appear here too with zero rates. Birthday leave and
  compensatory off never accrue; listing them keeps the configured type
  set complete for the API and the context builder.

USAGE:
  set := policy.DefaultSet()
  rate := set.MonthlyRate(leave.TypeAnnual)

SEE ALSO:
  - factory.go: JSON codec for policies
  - presets.go: ready-made policy JSON builders
*/
package policy

import (
	"github.com/warp/leave-engine/leave"
)

// Policy configures one leave type.
type Policy struct {
	Key  leave.TypeKey
	Name string

	// MonthlyRate is the accrual in days per month. Zero for types that
	// do not accrue.
	MonthlyRate float64

	// AnnualDays is an upfront grant posted once at the start of each
	// year, on top of (or instead of) monthly accrual.
	AnnualDays float64
}

// Set holds the active policy per leave type.
type Set map[leave.TypeKey]Policy

func (s Set) Get(key leave.TypeKey) (Policy, bool) {
	p, ok := s[key]
	return p, ok
}

func (s Set) Put(p Policy) {
	s[p.Key] = p
}

// MonthlyRate returns the accrual rate for a type, zero when the type is
// not configured or does not accrue.
func (s Set) MonthlyRate(key leave.TypeKey) leave.Days {
	if p, ok := s[key]; ok {
		return leave.NewDays(p.MonthlyRate)
	}
	return leave.ZeroDays()
}

// Keys returns the configured type keys in the enum's declaration order.
func (s Set) Keys() []leave.TypeKey {
	ordered := []leave.TypeKey{
		leave.TypeAnnual, leave.TypeSick, leave.TypeCasual,
		leave.TypeCompensatory, leave.TypeBirthday, leave.TypeOther,
	}
	keys := make([]leave.TypeKey, 0, len(s))
	for _, k := range ordered {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
