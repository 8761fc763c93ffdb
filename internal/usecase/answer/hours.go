package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
)

// HoursSourceID is reported as the source of schedule answers.
const HoursSourceID = "schedule:business-hours"

// DayHours is the opening window of one weekday. Open and Close are "HH:MM".
type DayHours struct {
	Open   string
	Close  string
	Closed bool
}

// Schedule is the weekly opening schedule.
type Schedule struct {
	Days     map[time.Weekday]DayHours
	Location *time.Location
	Note     string
}

// HoursSource provides the current weekly schedule.
type HoursSource interface {
	Schedule(ctx context.Context) (Schedule, error)
}

// StaticHours serves a fixed schedule.
type StaticHours Schedule

// Schedule implements HoursSource.
func (s StaticHours) Schedule(context.Context) (Schedule, error) { return Schedule(s), nil }

// HoursHandler answers business-hours questions from the schedule without synthesis.
type HoursHandler struct {
	source HoursSource
	now    func() time.Time
}

// NewHoursHandler creates a handler. A nil clock uses time.Now.
func NewHoursHandler(source HoursSource, now func() time.Time) *HoursHandler {
	if now == nil {
		now = time.Now
	}
	return &HoursHandler{source: source, now: now}
}

// Handle implements Handler.
func (h *HoursHandler) Handle(
	ctx context.Context, _ query.Query, cls intent.Classification, _ bundle.Bundle,
) (HandlerResult, error) {
	sched, err := h.source.Schedule(ctx)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("load schedule: %w", err)
	}
	if len(sched.Days) == 0 {
		return HandlerResult{}, nil
	}

	var day string
	if hi, ok := cls.Intent().(intent.HoursIntent); ok {
		day = hi.Day
	}

	var text string
	if wd, label, ok := h.resolveDay(day, sched.Location); ok {
		text = fmt.Sprintf("%s we are %s.", label, describe(sched.Days[wd]))
	} else {
		text = weekly(sched)
	}
	if sched.Note != "" {
		text += " " + sched.Note
	}
	return HandlerResult{
		Answer:   text,
		Sources:  []string{HoursSourceID},
		Volatile: relativeDay(day),
	}, nil
}

func (h *HoursHandler) resolveDay(day string, loc *time.Location) (time.Weekday, string, bool) {
	now := h.now()
	if loc != nil {
		now = now.In(loc)
	}
	switch day {
	case "":
		return 0, "", false
	case "today":
		return now.Weekday(), "Today", true
	case "tomorrow":
		return now.AddDate(0, 0, 1).Weekday(), "Tomorrow", true
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), day) {
			return wd, "On " + wd.String(), true
		}
	}
	return 0, "", false
}

// relativeDay reports whether day names a date relative to now.
func relativeDay(day string) bool {
	return day == "today" || day == "tomorrow"
}

func describe(d DayHours) string {
	if d.Closed || d.Open == "" || d.Close == "" {
		return "closed"
	}
	return fmt.Sprintf("open from %s to %s", d.Open, d.Close)
}

func weekly(s Schedule) string {
	parts := make([]string, 0, 7)
	for _, wd := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		parts = append(parts, fmt.Sprintf("%s: %s", wd, describe(s.Days[wd])))
	}
	return "Our tasting room hours are " + strings.Join(parts, "; ") + "."
}
