// Package slot derives bookable appointment times from a working window.
//
// Times are zero-padded 24h "HH:MM" strings. Candidates start at the window's start and
// advance in fixed steps; the Policy decides whether the last step may overrun the end.
package slot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"clinic/config"
	"clinic/shared/constant"
)

type Policy string

const (
	// PolicyFit only emits a slot that finishes by the end of the window.
	PolicyFit Policy = "fit"
	// PolicyStart emits every slot that starts before the end of the window.
	PolicyStart Policy = "start"

	DefaultWidth = 30 * time.Minute

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidClock  = errors.New("time must be formatted as HH:MM")
	ErrInvalidWidth  = errors.New("slot width must be a positive whole number of minutes")
	ErrInvalidPolicy = errors.New("unknown slot policy")
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case "", PolicyFit:
		return PolicyFit, nil
	case PolicyStart:
		return PolicyStart, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, value)
	}
}

// ParseClock returns minutes since midnight for a zero-padded "HH:MM".
func ParseClock(value string) (int, error) {
	if len(value) != len(constant.ClockLayout) || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	for _, idx := range []int{0, 1, 3, 4} {
		if value[idx] < '0' || value[idx] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
	}

	hours := int(value[0]-'0')*10 + int(value[1]-'0')
	minutes := int(value[3]-'0')*10 + int(value[4]-'0')

	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	return hours*60 + minutes, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Generate lists the slot start times inside [start, end) stepping by width.
// An empty or inverted window yields no slots.
func Generate(start, end string, width time.Duration, policy Policy) ([]string, error) {
	from, err := ParseClock(start)
	if err != nil {
		return nil, err
	}

	to, err := ParseClock(end)
	if err != nil {
		return nil, err
	}

	step := int(width / time.Minute)
	if step <= 0 || width%time.Minute != 0 {
		return nil, ErrInvalidWidth
	}

	slots := []string{}

	for current := from; current < to && current < minutesPerDay; current += step {
		if policy != PolicyStart && current+step > to {
			break
		}

		slots = append(slots, FormatClock(current))
	}

	return slots, nil
}

// Subtract keeps the candidates, in order, that are not among the booked times.
func Subtract(candidates, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	available := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if _, ok := taken[candidate]; ok {
			continue
		}

		available = append(available, candidate)
	}

	return available
}

// Calculator carries the clinic-wide slot width and inclusion policy.
type Calculator struct {
	width  time.Duration
	policy Policy
}

func NewCalculator(width time.Duration, policy Policy) Calculator {
	if width <= 0 {
		width = DefaultWidth
	}

	if policy == "" {
		policy = PolicyFit
	}

	return Calculator{width: width, policy: policy}
}

// NewCalculatorFromConfig reads SCHEDULE_SLOT_MINUTES and SCHEDULE_SLOT_POLICY.
func NewCalculatorFromConfig(cfg *config.Config) (Calculator, error) {
	policy, err := ParsePolicy(cfg.Schedule.SlotPolicy)
	if err != nil {
		return Calculator{}, err
	}

	return NewCalculator(time.Duration(cfg.Schedule.SlotMinutes)*time.Minute, policy), nil
}

func (c Calculator) Width() time.Duration {
	return c.width
}

func (c Calculator) Policy() Policy {
	return c.policy
}

func (c Calculator) Candidates(start, end string) ([]string, error) {
	return Generate(start, end, c.width, c.policy)
}

// Available is Candidates minus the booked times.
func (c Calculator) Available(start, end string, booked []string) ([]string, error) {
	candidates, err := c.Candidates(start, end)
	if err != nil {
		return nil, err
	}

	return Subtract(candidates, booked), nil
}

// IsCandidate reports whether value is exactly one of the generated slot times.
func (c Calculator) IsCandidate(start, end, value string) (bool, error) {
	candidates, err := c.Candidates(start, end)
	if err != nil {
		return false, err
	}

	return slices.Contains(candidates, value), nil
}
