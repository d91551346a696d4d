package points

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Action identifies an activity that earns points.
type Action string

const (
	ActionCreatePost    Action = "CREATE_POST"
	ActionCreateComment Action = "CREATE_COMMENT"
	ActionReceiveLike   Action = "RECEIVE_LIKE"
	ActionDailyLogin    Action = "DAILY_LOGIN"
)

// baseValues maps each action to its base point value, before the shop's
// multiplier is applied.
var baseValues = map[Action]int64{
	ActionCreatePost:    10,
	ActionCreateComment: 5,
	ActionReceiveLike:   2,
	ActionDailyLogin:    1,
}

// ParseAction validates a client-supplied action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := baseValues[a]; !ok {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Value computes the points an action is worth under the given shop
// multiplier, rounded to the nearest whole point.
func (a Action) Value(multiplier decimal.Decimal) int {
	base := baseValues[a]
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	return int(decimal.NewFromInt(base).Mul(multiplier).Round(0).IntPart())
}
