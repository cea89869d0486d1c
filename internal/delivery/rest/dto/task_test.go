package dto

import (
	"errors"
	"testing"
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
	"diswantin/internal/usecase"
)

func TestToCreateForm(t *testing.T) {
	req := TaskRequest{
		Name:           "quarterly report",
		Note:           "with charts",
		DeadlineDate:   "2024-06-28",
		DeadlineTime:   "17:00",
		StartAfterTime: "09:00",
		ParentID:       "a4f9a3be-0cb1-4f0e-9996-0a5c76cb53cf",
		Recurrence: &RecurrenceRequest{
			Start:    "2024-06-01",
			Type:     "week",
			Weekdays: []int{1, 3},
		},
	}

	form, err := req.ToCreateForm()
	if err != nil {
		t.Fatalf("ToCreateForm() error = %v", err)
	}

	if form.DeadlineDate == nil || *form.DeadlineDate != civil.NewDate(2024, time.June, 28) {
		t.Errorf("DeadlineDate = %v", form.DeadlineDate)
	}
	if form.DeadlineTime == nil || *form.DeadlineTime != civil.NewTimeOfDay(17, 0) {
		t.Errorf("DeadlineTime = %v", form.DeadlineTime)
	}
	if form.StartAfterDate != nil {
		t.Errorf("StartAfterDate = %v, want nil for the daily gate", form.StartAfterDate)
	}
	if form.StartAfterTime == nil || *form.StartAfterTime != civil.NewTimeOfDay(9, 0) {
		t.Errorf("StartAfterTime = %v", form.StartAfterTime)
	}

	if form.Recurrence == nil {
		t.Fatal("Recurrence = nil")
	}
	if form.Recurrence.Step != 1 {
		t.Errorf("recurrence step = %d, want defaulted to 1", form.Recurrence.Step)
	}
	want := models.NewWeekdaySet(time.Monday, time.Wednesday)
	if form.Recurrence.Weekdays != want {
		t.Errorf("weekdays = %v, want %v", form.Recurrence.Weekdays, want)
	}
}

func TestToCreateFormCollectsAllFieldErrors(t *testing.T) {
	req := TaskRequest{
		Name:          "bad dates",
		DeadlineDate:  "28/06/2024",
		ScheduledTime: "9pm",
		Recurrence: &RecurrenceRequest{
			Start:    "2024-06-01",
			Type:     "week",
			Weekdays: []int{7},
		},
	}

	_, err := req.ToCreateForm()
	var validation *usecase.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("ToCreateForm() error = %v, want ValidationError", err)
	}

	for _, field := range []string{"deadline_date", "scheduled_time", "recurrence.weekdays"} {
		if _, ok := validation.Fields[field]; !ok {
			t.Errorf("fields = %v, missing %q", validation.Fields, field)
		}
	}
}

func TestToUpdateFormParentDirectives(t *testing.T) {
	// Absent parent_id leaves the hierarchy alone.
	req := UpdateTaskRequest{TaskRequest: TaskRequest{Name: "renamed"}}
	form, err := req.ToUpdateForm("a4f9a3be-0cb1-4f0e-9996-0a5c76cb53cf")
	if err != nil {
		t.Fatalf("ToUpdateForm() error = %v", err)
	}
	if form.ParentID != nil {
		t.Errorf("ParentID = %v, want nil when absent", form.ParentID)
	}

	// An explicit empty string detaches the task.
	detach := ""
	req.ParentID = &detach
	form, err = req.ToUpdateForm("a4f9a3be-0cb1-4f0e-9996-0a5c76cb53cf")
	if err != nil {
		t.Fatal(err)
	}
	if form.ParentID == nil || *form.ParentID != "" {
		t.Errorf("ParentID = %v, want pointer to empty string", form.ParentID)
	}
}
