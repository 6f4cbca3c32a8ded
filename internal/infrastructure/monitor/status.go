package monitor

import "time"

type Status struct {
	Checks    map[string]bool `json:"checks"`
	LastCheck time.Time       `json:"last_check"`
}

func (s Status) Online() bool {
	if s.LastCheck.IsZero() {
		return false
	}
	for _, ok := range s.Checks {
		if !ok {
			return false
		}
	}
	return true
}

func (s Status) clone() Status {
	out := Status{LastCheck: s.LastCheck, Checks: make(map[string]bool, len(s.Checks))}
	for k, v := range s.Checks {
		out.Checks[k] = v
	}
	return out
}
