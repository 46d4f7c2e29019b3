// Package deps reports which external binaries slidecast can reach.
package deps

import "strings"

// Requirement names an external binary slidecast shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after resolution. Path is set when Available;
// Detail explains why it is not.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if path, err := Resolve(status.Command); err != nil {
			status.Detail = err.Error()
		} else {
			status.Path, status.Available = path, true
		}
		results[i] = status
	}
	return results
}

// Missing filters statuses down to unavailable required binaries.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
