// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bootstrap

import "strconv"

// State is a stage in the lifecycle of an [Instance].
type State int

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

var stateNames = [...]string{
	StateStarting: "STARTING",
	StateRunning:  "RUNNING",
	StateStopping: "STOPPING",
	StateStopped:  "STOPPED",
}

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}
