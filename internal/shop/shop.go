package shop

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Shop struct {
	ID          string
	Domain      string
	Name        string
	AccessToken string
	Status      string

	// PointsMultiplier scales base point values on award (e.g. 1.50 during a
	// promotion). Defaults to 1.
	PointsMultiplier decimal.Decimal

	Onboarding  OnboardingState
	InstalledAt time.Time
}

// OnboardingState tracks which setup tasks a shop has completed. Each task is
// an explicit column, addressed through the OnboardingTask enum only.
type OnboardingState struct {
	CreatedCategory  bool `json:"createdCategory"`
	InitializedRoles bool `json:"initializedRoles"`
	InvitedMember    bool `json:"invitedMember"`
}

type OnboardingTask string

const (
	TaskCreateCategory OnboardingTask = "CREATE_CATEGORY"
	TaskInitRoles      OnboardingTask = "INIT_ROLES"
	TaskInviteMember   OnboardingTask = "INVITE_MEMBER"
)

// ParseOnboardingTask validates a client-supplied task name.
func ParseOnboardingTask(s string) (OnboardingTask, error) {
	switch OnboardingTask(s) {
	case TaskCreateCategory, TaskInitRoles, TaskInviteMember:
		return OnboardingTask(s), nil
	}
	return "", fmt.Errorf("unknown onboarding task %q", s)
}

// column maps a task to its dedicated column. The switch keeps the set of
// columns closed; there is no dynamic field-name indexing.
func (t OnboardingTask) column() (string, error) {
	switch t {
	case TaskCreateCategory:
		return "onboarding_created_category", nil
	case TaskInitRoles:
		return "onboarding_initialized_roles", nil
	case TaskInviteMember:
		return "onboarding_invited_member", nil
	}
	return "", fmt.Errorf("unknown onboarding task %q", string(t))
}
