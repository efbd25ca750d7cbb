package valueobjects

// GroupStatus is the lifecycle state of a subscription group. Subscription
// lines mirror it.
type GroupStatus string

const (
	StatusActive    GroupStatus = "active"
	StatusPaused    GroupStatus = "paused"
	StatusCancelled GroupStatus = "cancelled"
)

var groupTransitions = map[GroupStatus][]GroupStatus{
	StatusActive:    {StatusPaused, StatusCancelled},
	StatusPaused:    {StatusActive, StatusCancelled},
	StatusCancelled: {},
}

func (s GroupStatus) String() string {
	return string(s)
}

func (s GroupStatus) IsValid() bool {
	_, ok := groupTransitions[s]
	return ok
}

func (s GroupStatus) IsTerminal() bool {
	return s == StatusCancelled
}

func (s GroupStatus) CanTransitionTo(target GroupStatus) bool {
	for _, allowed := range groupTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
