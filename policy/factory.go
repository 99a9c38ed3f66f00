/*
factory.go - JSON to policy conversion

PURPOSE:
  Policies are stored and transported as JSON so HR can adjust rates
  without a code change. The factory validates the JSON and produces the
  Policy struct the engine runs on.

JSON SCHEMA:
  {
    "key": "annual",
    "name": "Annual Leave",
    "monthly_rate": 1.5,
    "annual_days": 0
  }

USAGE:
  f := policy.NewFactory()
  p, err := f.ParsePolicy(policy.AnnualLeaveJSON("Annual Leave", 1.5))
*/
package policy

import (
	"encoding/json"
	"fmt"

	"github.com/warp/leave-engine/leave"
)

// PolicyJSON is the wire representation of a policy.
type PolicyJSON struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	MonthlyRate float64 `json:"monthly_rate,omitempty"`
	AnnualDays  float64 `json:"annual_days,omitempty"`
}

// Factory converts JSON policies to Policy structs.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// ParsePolicy parses and validates a single policy document.
func (f *Factory) ParsePolicy(jsonStr string) (Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates a decoded policy document.
func (f *Factory) FromJSON(pj PolicyJSON) (Policy, error) {
	key := leave.TypeKey(pj.Key)
	if !key.Valid() {
		return Policy{}, fmt.Errorf("policy %q: unknown leave type key", pj.Key)
	}
	if pj.Name == "" {
		return Policy{}, fmt.Errorf("policy %q: name is required", pj.Key)
	}
	if pj.MonthlyRate < 0 {
		return Policy{}, fmt.Errorf("policy %q: monthly_rate must not be negative", pj.Key)
	}
	if pj.AnnualDays < 0 {
		return Policy{}, fmt.Errorf("policy %q: annual_days must not be negative", pj.Key)
	}
	if key.Special() && (pj.MonthlyRate != 0 || pj.AnnualDays != 0) {
		return Policy{}, fmt.Errorf("policy %q: special types do not accrue", pj.Key)
	}

	return Policy{
		Key:         key,
		Name:        pj.Name,
		MonthlyRate: pj.MonthlyRate,
		AnnualDays:  pj.AnnualDays,
	}, nil
}

// ParseSet parses a JSON array of policy documents into a Set.
func (f *Factory) ParseSet(jsonStr string) (Set, error) {
	var docs []PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &docs); err != nil {
		return nil, fmt.Errorf("failed to parse policy set JSON: %w", err)
	}
	set := make(Set, len(docs))
	for _, pj := range docs {
		p, err := f.FromJSON(pj)
		if err != nil {
			return nil, err
		}
		if _, dup := set[p.Key]; dup {
			return nil, fmt.Errorf("policy %q: duplicate key in set", p.Key)
		}
		set.Put(p)
	}
	return set, nil
}

// ToJSON renders a policy back to its wire form.
func ToJSON(p Policy) string {
	pj := PolicyJSON{
		Key:         string(p.Key),
		Name:        p.Name,
		MonthlyRate: p.MonthlyRate,
		AnnualDays:  p.AnnualDays,
	}
	buf, _ := json.Marshal(pj)
	return string(buf)
}
