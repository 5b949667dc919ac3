package booking

import "context"

// FlagRepairer schedules a later recomputation of a room's availability
// hint after an in-line flag write failed.
type FlagRepairer interface {
	ScheduleFlagRepair(ctx context.Context, roomID int64) error
}

type noopRepairer struct{}

func (noopRepairer) ScheduleFlagRepair(context.Context, int64) error { return nil }

// NoopRepairer drops repair requests; the periodic refresh still corrects flags.
var NoopRepairer FlagRepairer = noopRepairer{}
