// Package roles holds the participant role vocabulary and the permission
// table that decides which role may perform which action.
package roles

import (
	"fmt"
	"strings"
)

type Role string

const (
	Professional  Role = "professional"
	JobSeeker     Role = "job_seeker"
	Employer      Role = "employer"
	BusinessOwner Role = "business_owner"
	Investor      Role = "investor"

	// Admin is a system role. It is never stored in a user's role set and
	// cannot be self-assigned.
	Admin Role = "admin"
)

// All lists participant roles in canonical order.
var All = []Role{Professional, JobSeeker, Employer, BusinessOwner, Investor}

func (r Role) Valid() bool {
	for _, known := range All {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Parse accepts a tag in any case, with dashes or underscores.
func Parse(tag string) (Role, error) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "-", "_"))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", tag)
	}
	return r, nil
}

// Set is an ordered, de-duplicated set of participant roles.
type Set []Role

// NewSet builds a Set, dropping unknown roles and duplicates.
func NewSet(rs ...Role) Set {
	var s Set
	for _, r := range rs {
		s = s.Add(r)
	}
	return s
}

// ParseList parses role tags and fails on the first unknown one.
func ParseList(tags []string) (Set, error) {
	var s Set
	for _, tag := range tags {
		r, err := Parse(tag)
		if err != nil {
			return nil, err
		}
		s = s.Add(r)
	}
	return s, nil
}

// FromStrings is the lenient form of ParseList used for stored values.
func FromStrings(tags []string) Set {
	var s Set
	for _, tag := range tags {
		if r, err := Parse(tag); err == nil {
			s = s.Add(r)
		}
	}
	return s
}

func (s Set) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

func (s Set) HasAny(rs ...Role) bool {
	for _, r := range rs {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Add returns a new set including r, in canonical order.
func (s Set) Add(r Role) Set {
	if !r.Valid() || s.Has(r) {
		return s
	}
	out := make(Set, 0, len(s)+1)
	for _, known := range All {
		if known == r || s.Has(known) {
			out = append(out, known)
		}
	}
	return out
}

func (s Set) Remove(r Role) Set {
	out := make(Set, 0, len(s))
	for _, have := range s {
		if have != r {
			out = append(out, have)
		}
	}
	return out
}

// Union merges two sets.
func (s Set) Union(other Set) Set {
	out := s
	for _, r := range other {
		out = out.Add(r)
	}
	return out
}

func (s Set) IsEmpty() bool { return len(s) == 0 }

func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

// ============================================
// Boolean flag view
// ============================================

// Flags is the boolean-per-role view clients send and receive.
type Flags struct {
	IsProfessional  bool `json:"isProfessional"`
	IsJobSeeker     bool `json:"isJobSeeker"`
	IsEmployer      bool `json:"isEmployer"`
	IsBusinessOwner bool `json:"isBusinessOwner"`
	IsInvestor      bool `json:"isInvestor"`
}

func FromFlags(f Flags) Set {
	var s Set
	if f.IsProfessional {
		s = s.Add(Professional)
	}
	if f.IsJobSeeker {
		s = s.Add(JobSeeker)
	}
	if f.IsEmployer {
		s = s.Add(Employer)
	}
	if f.IsBusinessOwner {
		s = s.Add(BusinessOwner)
	}
	if f.IsInvestor {
		s = s.Add(Investor)
	}
	return s
}

func (s Set) Flags() Flags {
	return Flags{
		IsProfessional:  s.Has(Professional),
		IsJobSeeker:     s.Has(JobSeeker),
		IsEmployer:      s.Has(Employer),
		IsBusinessOwner: s.Has(BusinessOwner),
		IsInvestor:      s.Has(Investor),
	}
}
