package timeslots

import (
	"time"

	pkgerrors "github.com/crumbhq/crumb-backend/pkg/errors"
)

// GenerateParams describes one day of back-to-back pickup windows.
type GenerateParams struct {
	Date            time.Time
	StartHour       int
	EndHour         int
	IntervalMinutes int
	MaxOrders       int
}

// SlotTemplate is a generated window before persistence assigns identity and counters.
type SlotTemplate struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	MaxOrders int       `json:"max_orders"`
}

func (p GenerateParams) validate() error {
	details := map[string]any{}
	if p.IntervalMinutes <= 0 {
		details["interval_minutes"] = "must be positive"
	}
	if p.StartHour < 0 || p.StartHour > 24 {
		details["start_hour"] = "must be between 0 and 24"
	}
	if p.EndHour < 0 || p.EndHour > 24 {
		details["end_hour"] = "must be between 0 and 24"
	}
	if p.MaxOrders <= 0 {
		details["max_orders"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid slot generation parameters").WithDetails(details)
	}
	return nil
}

// GenerateSlots lays out windows of IntervalMinutes from StartHour:00 to EndHour:00
// on Date, in Date's location. A trailing window that would end after EndHour is dropped.
func GenerateSlots(p GenerateParams) ([]SlotTemplate, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.EndHour <= p.StartHour {
		return []SlotTemplate{}, nil
	}

	loc := p.Date.Location()
	y, m, d := p.Date.Date()
	cursor := time.Date(y, m, d, p.StartHour, 0, 0, 0, loc)
	limit := time.Date(y, m, d, p.EndHour, 0, 0, 0, loc)
	step := time.Duration(p.IntervalMinutes) * time.Minute

	templates := make([]SlotTemplate, 0, int(limit.Sub(cursor)/step))
	for end := cursor.Add(step); !end.After(limit); end = cursor.Add(step) {
		templates = append(templates, SlotTemplate{
			StartTime: cursor,
			EndTime:   end,
			MaxOrders: p.MaxOrders,
		})
		cursor = end
	}
	return templates, nil
}
