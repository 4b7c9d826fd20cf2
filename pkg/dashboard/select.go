package dashboard

import "github.com/mpapenbr/f1-dashboard-service/pkg/model"

type Source string

const (
	SourceLive Source = "live"
	SourceDemo Source = "demo"
)

// Select returns live if present, demo otherwise.
// The result is always one of the two inputs, never a mix of both.
func Select(live, demo *model.DashboardViewModel) (*model.DashboardViewModel, Source) {
	if live != nil {
		return live, SourceLive
	}
	return demo, SourceDemo
}
