package orderstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// IsTerminal reports whether no further transitions are expected.
func (s Status) IsTerminal() bool {
	return s.Name == Statuses.Delivered.Name || s.Name == Statuses.Cancelled.Name
}

type Enum struct {
	Pending   Status
	Preparing Status
	Ready     Status
	Delivered Status
	Cancelled Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Delivered: Status{Name: "delivered"},
	Cancelled: Status{Name: "cancelled"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Delivered,
	Statuses.Cancelled,
}

// Progression is the forward sequence shown to customers. Cancelled is an
// absorbing state outside the progression.
var Progression = []Status{
	Statuses.Pending,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Delivered,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// CanTransition reports whether an order may move from one status to
// another. The progression only moves forward; cancelled is reachable from
// any non-terminal status and absorbs.
func CanTransition(from, to string) bool {
	f := ByName(from)
	t := ByName(to)
	if f == nil || t == nil || from == to {
		return false
	}
	if f.IsTerminal() {
		return false
	}
	if t.Name == Statuses.Cancelled.Name {
		return true
	}
	return ProgressionIndex(t.Name) > ProgressionIndex(f.Name)
}

// ProgressionIndex returns the position of name within Progression, or -1
// for cancelled and unknown statuses.
func ProgressionIndex(name string) int {
	for i, s := range Progression {
		if s.Name == name {
			return i
		}
	}
	return -1
}
