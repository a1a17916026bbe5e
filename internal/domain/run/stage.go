package run

// Stage is a step of the strictly linear pipeline state machine.
type Stage int

// Stages in execution order.
const (
	StageIdle Stage = iota
	StageCleaning
	StageInstalling
	StageBundling
	StageDigesting
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:       "idle",
	StageCleaning:   "cleaning",
	StageInstalling: "installing",
	StageBundling:   "bundling",
	StageDigesting:  "digesting",
	StageDone:       "done",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}

	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// CanAdvanceTo allows only the next stage in order, or failure from any non-terminal stage.
func (s Stage) CanAdvanceTo(next Stage) bool {
	if s.Terminal() {
		return false
	}

	return next == StageFailed || next == s+1
}
