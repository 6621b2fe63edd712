package programs

import (
	"sort"
	"time"
)

type ExpiringProgram struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
}

// WodStatus summarizes a creator's quota usage.
type WodStatus struct {
	TotalWods          int               `json:"total_wods"`
	MaxTotalWods       int               `json:"max_total_wods"`
	PublicWods         int               `json:"public_wods"`
	MaxPublicWods      int               `json:"max_public_wods"`
	ExpiringSoon       int               `json:"expiring_soon"`
	ExpiringPrograms   []ExpiringProgram `json:"expiring_programs"`
	ExpiredWods        int               `json:"expired_wods"`
	CanCreateWod       bool              `json:"can_create_wod"`
	CanCreatePublicWod bool              `json:"can_create_public_wod"`
}

func computeWodStatus(programs []Program, now time.Time) WodStatus {
	status := WodStatus{
		TotalWods:        len(programs),
		MaxTotalWods:     MaxTotalPrograms,
		MaxPublicWods:    MaxOpenPrograms,
		ExpiringPrograms: []ExpiringProgram{},
	}

	for i := range programs {
		p := &programs[i]
		if !p.IsOpen {
			continue
		}
		if p.IsExpired(now) {
			status.ExpiredWods++
			continue
		}

		status.PublicWods++
		if p.ExpiresAt != nil && p.ExpiresAt.Sub(now) <= ExpiringSoonWindow {
			status.ExpiringSoon++
			status.ExpiringPrograms = append(status.ExpiringPrograms, ExpiringProgram{
				ID:        p.ID,
				Title:     p.Title,
				ExpiresAt: *p.ExpiresAt,
				DaysLeft:  *p.DaysUntilExpiry(now),
			})
		}
	}

	sort.Slice(status.ExpiringPrograms, func(i, j int) bool {
		return status.ExpiringPrograms[i].ExpiresAt.Before(status.ExpiringPrograms[j].ExpiresAt)
	})

	status.CanCreateWod = status.TotalWods < MaxTotalPrograms
	status.CanCreatePublicWod = status.PublicWods < MaxOpenPrograms
	return status
}
