package tasks

import "fmt"

// RefreshPolicy decides whether a finished task triggers a tree refresh.
type RefreshPolicy string

const (
	RefreshAlways    RefreshPolicy = "always"
	RefreshOnFailure RefreshPolicy = "on-failure"
	RefreshNever     RefreshPolicy = "never"
)

// ParseRefreshPolicy validates s. The empty string means RefreshAlways.
func ParseRefreshPolicy(s string) (RefreshPolicy, error) {
	switch p := RefreshPolicy(s); p {
	case "":
		return RefreshAlways, nil
	case RefreshAlways, RefreshOnFailure, RefreshNever:
		return p, nil
	default:
		return "", fmt.Errorf("invalid refresh policy %q (want always, on-failure or never)", s)
	}
}

// ShouldRefresh applies the policy to a completion.
func (p RefreshPolicy) ShouldRefresh(c Completion) bool {
	switch p {
	case RefreshNever:
		return false
	case RefreshOnFailure:
		return c.Failed()
	default:
		return true
	}
}
