package service

import (
	"fmt"
	"sort"

	"github.com/fantaballa/gamepass-api/internal/entity"
)

// LadderPosition locates a point total on the tier ladder.
// TierIndex counts the thresholds at or below the total, so it is also the
// number of unlocked tiers; Current is the highest reached tier (nil below
// the first threshold) and Next the first unreached one (nil at the top).
type LadderPosition struct {
	TierIndex int
	Current   *entity.Tier
	Next      *entity.Tier
	Progress  float64
}

// LocateOnLadder computes the ladder position for a point total. Inactive
// tiers are invisible: they neither count toward the index nor anchor the
// progress fraction. Progress is (points-prev)/(next-prev) clamped to [0,1],
// and 1 when no tier remains.
func LocateOnLadder(tiers []*entity.Tier, points int) LadderPosition {
	ladder := make([]*entity.Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.Active {
			ladder = append(ladder, t)
		}
	}
	sort.SliceStable(ladder, func(i, j int) bool {
		return ladder[i].RequiredPoints < ladder[j].RequiredPoints
	})

	pos := LadderPosition{Progress: 1}
	for _, t := range ladder {
		if t.RequiredPoints <= points {
			pos.TierIndex++
			pos.Current = t
		} else {
			pos.Next = t
			break
		}
	}

	if pos.Next != nil {
		prev := 0
		if pos.Current != nil {
			prev = pos.Current.RequiredPoints
		}
		span := pos.Next.RequiredPoints - prev
		if span <= 0 {
			pos.Progress = 1
		} else {
			pos.Progress = float64(points-prev) / float64(span)
		}
		if pos.Progress < 0 {
			pos.Progress = 0
		}
		if pos.Progress > 1 {
			pos.Progress = 1
		}
	}

	return pos
}

// RewardLabel renders a human-readable label for a tier reward. An explicit
// Label always wins; otherwise the label is derived from the kind-specific
// fields.
func RewardLabel(r entity.Reward) string {
	if r.Label != "" {
		return r.Label
	}

	switch r.Kind {
	case entity.RewardCard:
		if r.CardOverall > 0 {
			return fmt.Sprintf("Card %s (OVR %d)", r.CardID, r.CardOverall)
		}
		return fmt.Sprintf("Card %s", r.CardID)
	case entity.RewardSkin:
		return fmt.Sprintf("Skin: %s", r.SkinName)
	case entity.RewardColor:
		return fmt.Sprintf("Color: %s", r.ColorName)
	case entity.RewardItem:
		return r.ItemName
	default:
		return "Reward"
	}
}
