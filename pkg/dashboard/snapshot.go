package dashboard

import (
	"time"

	"github.com/mpapenbr/f1-dashboard-service/pkg/livesync"
	"github.com/mpapenbr/f1-dashboard-service/pkg/model"
)

// Snapshot is the poller state as presented to clients
type Snapshot struct {
	Source    Source                    `json:"source"`
	IsLive    bool                      `json:"isLive"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
	UpdatedAt *time.Time                `json:"updatedAt,omitempty"`
	Data      *model.DashboardViewModel `json:"data"`
}

// SnapshotOf substitutes demo for missing live data
func SnapshotOf(s livesync.State, demo *model.DashboardViewModel) Snapshot {
	data, src := Select(s.Data, demo)
	ret := Snapshot{
		Source:  src,
		IsLive:  s.IsLive,
		Loading: s.Loading,
		Data:    data,
	}
	if s.Err != nil {
		ret.Error = s.Err.Error()
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		ret.UpdatedAt = &t
	}
	return ret
}
