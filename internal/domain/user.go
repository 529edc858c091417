package domain

import "time"

// FitnessGoal enumerates the goals a user can pick during registration.
type FitnessGoal string

const (
	GoalWeightLoss    FitnessGoal = "weight-loss"
	GoalMuscleGain    FitnessGoal = "muscle-gain"
	GoalEndurance     FitnessGoal = "endurance"
	GoalGeneralHealth FitnessGoal = "general-health"
)

// ValidGoals lists every accepted fitness goal value.
var ValidGoals = []FitnessGoal{GoalWeightLoss, GoalMuscleGain, GoalEndurance, GoalGeneralHealth}

// User represents the registered identity owned by the session.
// Immutable after registration except for the verification flag.
type User struct {
	ID            string      `json:"id"`
	WalletAddress string      `json:"wallet_address"`
	Email         string      `json:"email"`
	Username      string      `json:"username"`
	FullName      string      `json:"full_name"`
	DateOfBirth   string      `json:"date_of_birth"`
	HeightCm      int         `json:"height_cm"`
	WeightKg      int         `json:"weight_kg"`
	FitnessGoal   FitnessGoal `json:"fitness_goal"`
	IsVerified    bool        `json:"is_verified"`
	CreatedAt     time.Time   `json:"created_at"`
}

// ShortAddress returns the truncated wallet address shown by the screens.
func (u *User) ShortAddress() string {
	addr := u.WalletAddress
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
