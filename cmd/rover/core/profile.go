package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned by LookupProfile for an unregistered key.
var ErrUnknownProfile = errors.New("unknown scenario profile")

// DrawRange is the exclusive upper bound of a profile draw.
const DrawRange = 100

// Threshold assigns State to every draw r with previous.Max < r <= Max.
type Threshold struct {
	Max   int
	State WheelState
}

// Profile is the probability ruleset governing how wheel outcomes are drawn.
// Profiles are immutable once a scenario has been created with them.
type Profile struct {
	Key         string
	Name        string
	Description string
	Thresholds  []Threshold

	// OneHazardPerCycle forces Working once a hazard was reported in the
	// current cycle.
	OneHazardPerCycle bool
}

// Built-in profiles
var (
	ProfileRock = Profile{
		Key:         "rock",
		Name:        "Rock",
		Description: "Single wheel blocked by a rock",
		Thresholds: []Threshold{
			{Max: 74, State: Working},
			{Max: 99, State: Blocked},
		},
		OneHazardPerCycle: true,
	}

	ProfileSink = Profile{
		Key:         "sink",
		Name:        "Sink",
		Description: "Single wheel sinking",
		Thresholds: []Threshold{
			{Max: 74, State: Working},
			{Max: 99, State: Sinking},
		},
		OneHazardPerCycle: true,
	}

	ProfileFree = Profile{
		Key:         "free",
		Name:        "Free",
		Description: "Single wheel freewheeling",
		Thresholds: []Threshold{
			{Max: 74, State: Working},
			{Max: 99, State: Freewheeling},
		},
		OneHazardPerCycle: true,
	}

	ProfileFreeForAll = Profile{
		Key:         "ffa",
		Name:        "FreeForAll",
		Description: "Any problem, any number of wheels",
		Thresholds: []Threshold{
			{Max: 70, State: Working},
			{Max: 80, State: Sinking},
			{Max: 90, State: Freewheeling},
			{Max: 99, State: Blocked},
		},
	}
)

// Profiles returns the built-in profiles in menu order.
func Profiles() []Profile {
	return []Profile{ProfileRock, ProfileSink, ProfileFree, ProfileFreeForAll}
}

// LookupProfile finds a built-in profile by key or name, case-insensitively.
func LookupProfile(key string) (Profile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Key, key) || strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, key)
}

// Validate checks that the thresholds partition [0, DrawRange).
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if len(p.Thresholds) == 0 {
		return fmt.Errorf("profile %s has no thresholds", p.Name)
	}

	prev := -1
	for i, t := range p.Thresholds {
		if t.Max <= prev {
			return fmt.Errorf("profile %s threshold %d must be greater than %d", p.Name, i, prev)
		}
		prev = t.Max
	}
	if prev < DrawRange-1 {
		return fmt.Errorf("profile %s thresholds end at %d, must cover %d", p.Name, prev, DrawRange-1)
	}
	return nil
}

// Draw maps a draw r in [0, DrawRange) to a wheel state.
func (p Profile) Draw(r int) WheelState {
	for _, t := range p.Thresholds {
		if r <= t.Max {
			return t.State
		}
	}
	return p.Thresholds[len(p.Thresholds)-1].State
}

// HazardTypes returns the distinct hazards this profile can produce.
func (p Profile) HazardTypes() []WheelState {
	var out []WheelState
	seen := make(map[WheelState]bool)
	for _, t := range p.Thresholds {
		if t.State.IsHazard() && !seen[t.State] {
			seen[t.State] = true
			out = append(out, t.State)
		}
	}
	return out
}

// Probability returns the chance, in percent, that a draw yields state.
func (p Profile) Probability(state WheelState) int {
	total := 0
	prev := -1
	for _, t := range p.Thresholds {
		upper := t.Max
		if upper > DrawRange-1 {
			upper = DrawRange - 1
		}
		if t.State == state && upper > prev {
			total += upper - prev
		}
		prev = t.Max
	}
	return total
}
