package engine

import (
	"github.com/yourusername/dabengine/internal/grid"
)

// Reward shaping constants.
const (
	rewardPerBox        = 30.0 // Base reward per completed box
	penaltyPerLostBox   = 15.0 // Penalty per box conceded with nothing gained
	softPenaltyLostBox  = 5.0  // Reduced penalty when boxes were also gained
	leadBonusPerBox     = 5.0  // Positional bonus per box of lead
	earlyGameBonusScale = 10.0 // Declining bonus for early captures
	winBonus            = 150.0
	tieBonus            = 50.0
	lossPenalty         = 75.0
	marginBonusPerBox   = 10.0 // Extra per box of victory margin
)

// Reward scores a state transition from the agent's perspective given the
// box ownership before and after, the agent's player ID, and the total
// number of boxes on the board. All terms are additive and the function has
// no side effects.
func Reward(prev, current map[grid.Box]string, agentID string, totalBoxes int) float64 {
	var gained, lost int
	var agentTotal, opponentTotal int

	for box, owner := range current {
		if owner == agentID {
			agentTotal++
		} else {
			opponentTotal++
		}
		if _, seen := prev[box]; seen {
			continue
		}
		if owner == agentID {
			gained++
		} else {
			lost++
		}
	}

	reward := float64(gained) * rewardPerBox

	if lost > 0 {
		if gained == 0 {
			reward -= penaltyPerLostBox * float64(lost)
		} else {
			reward -= softPenaltyLostBox * float64(lost)
		}
	}

	if agentTotal > opponentTotal {
		reward += leadBonusPerBox * float64(agentTotal-opponentTotal)
	}

	filled := agentTotal + opponentTotal
	progress := float64(filled) / float64(totalBoxes)
	if gained > 0 {
		if bonus := earlyGameBonusScale * (1.0 - progress); bonus > 0 {
			reward += bonus
		}
	}

	if filled == totalBoxes {
		margin := agentTotal - opponentTotal
		switch {
		case margin > 0:
			reward += winBonus + marginBonusPerBox*float64(margin)
		case margin == 0:
			reward += tieBonus
		default:
			reward -= lossPenalty
		}
	}

	return reward
}
