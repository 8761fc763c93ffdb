package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/sommelier/internal/config"
	"github.com/kailas-cloud/sommelier/internal/usecase/answer"
	sommelier "github.com/kailas-cloud/sommelier/pkg/sdk"
)

func TestScheduleFromConfig(t *testing.T) {
	if src := scheduleFromConfig(config.HoursConfig{}); src != nil {
		t.Fatalf("expected nil source without days, got %v", src)
	}

	src := scheduleFromConfig(config.HoursConfig{
		Timezone: "UTC",
		Note:     "Last seating at 4:30.",
		Days: map[string]config.DayHoursConfig{
			"Saturday": {Open: "10:00", Close: "17:00"},
			"monday":   {Closed: true},
		},
	})
	sched, err := src.Schedule(context.Background())
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got := sched.Days[time.Saturday]; got != (answer.DayHours{Open: "10:00", Close: "17:00"}) {
		t.Errorf("saturday = %+v", got)
	}
	if !sched.Days[time.Monday].Closed {
		t.Error("monday must be closed")
	}
	if sched.Location != time.UTC || sched.Note != "Last seating at 4:30." {
		t.Errorf("unexpected schedule %+v", sched)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "ask", "classify"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"ask"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without a question")
	}
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["question"] != "is the tasting room open" || body["session_id"] != "me" {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer":  "We are open 10:00 to 17:00 on Saturday.",
			"sources": []string{"schedule:business-hours"},
		})
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"ask", "--server", srv.URL, "--session", "me", "is", "the", "tasting", "room", "open"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "We are open 10:00 to 17:00") ||
		!strings.Contains(out.String(), "- schedule:business-hours") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPrintClassification(t *testing.T) {
	var out bytes.Buffer
	printClassification(&out, sommelier.Classification{
		Domain:            sommelier.DomainProduct,
		Subtype:           "specific",
		EntityName:        "Reserve Cabernet Franc",
		EntityPattern:     "reserve-cabernet-franc",
		IsConfirmedEntity: true,
	})
	for _, want := range []string{"domain:   product", "entity:   Reserve Cabernet Franc (reserve-cabernet-franc)", "confirmed: true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
}
