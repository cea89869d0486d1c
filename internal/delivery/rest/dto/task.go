package dto

import (
	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
	"diswantin/internal/usecase"
)

// TaskRequest is the JSON body for creating or updating a task. Dates
// are YYYY-MM-DD strings, times HH:MM; both halves are optional and
// independent.
type TaskRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" binding:"required"`
	Note string `json:"note,omitempty"`

	DeadlineDate   string `json:"deadline_date,omitempty"`
	DeadlineTime   string `json:"deadline_time,omitempty"`
	StartAfterDate string `json:"start_after_date,omitempty"`
	StartAfterTime string `json:"start_after_time,omitempty"`
	ScheduledDate  string `json:"scheduled_date,omitempty"`
	ScheduledTime  string `json:"scheduled_time,omitempty"`

	ParentID string `json:"parent_id,omitempty"`

	Recurrence *RecurrenceRequest `json:"recurrence,omitempty"`
}

// RecurrenceRequest is the JSON shape of a recurrence rule
type RecurrenceRequest struct {
	Start    string `json:"start" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Step     int    `json:"step"`
	Weekdays []int  `json:"weekdays,omitempty"`
}

// fieldParser accumulates field-level parse errors so a request with
// several bad fields reports all of them at once.
type fieldParser struct {
	fields map[string]string
}

func newFieldParser() *fieldParser {
	return &fieldParser{fields: make(map[string]string)}
}

func (p *fieldParser) date(field, value string) *civil.Date {
	if value == "" {
		return nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		p.fields[field] = err.Error()
		return nil
	}
	return &d
}

func (p *fieldParser) timeOfDay(field, value string) *civil.TimeOfDay {
	if value == "" {
		return nil
	}
	t, err := civil.ParseTimeOfDay(value)
	if err != nil {
		p.fields[field] = err.Error()
		return nil
	}
	return &t
}

func (p *fieldParser) err() error {
	if len(p.fields) > 0 {
		return &usecase.ValidationError{Fields: p.fields}
	}
	return nil
}

func (r *RecurrenceRequest) toInput(p *fieldParser) *usecase.RecurrenceInput {
	input := &usecase.RecurrenceInput{
		Type: models.RecurrenceType(r.Type),
		Step: r.Step,
	}
	if input.Step == 0 {
		input.Step = 1
	}
	if start := p.date("recurrence.start", r.Start); start != nil {
		input.Start = *start
	}
	for _, day := range r.Weekdays {
		if day < 0 || day > 6 {
			p.fields["recurrence.weekdays"] = "weekdays must be 0 (Sunday) through 6 (Saturday)"
			break
		}
		input.Weekdays |= 1 << uint(day)
	}
	return input
}

// ToCreateForm converts the request into a validated create form
func (r *TaskRequest) ToCreateForm() (usecase.TaskForm, error) {
	p := newFieldParser()
	form := usecase.TaskForm{
		ClientID:       r.ID,
		Name:           r.Name,
		Note:           r.Note,
		DeadlineDate:   p.date("deadline_date", r.DeadlineDate),
		DeadlineTime:   p.timeOfDay("deadline_time", r.DeadlineTime),
		StartAfterDate: p.date("start_after_date", r.StartAfterDate),
		StartAfterTime: p.timeOfDay("start_after_time", r.StartAfterTime),
		ScheduledDate:  p.date("scheduled_date", r.ScheduledDate),
		ScheduledTime:  p.timeOfDay("scheduled_time", r.ScheduledTime),
		ParentID:       r.ParentID,
	}
	if r.Recurrence != nil {
		form.Recurrence = r.Recurrence.toInput(p)
	}
	return form, p.err()
}

// UpdateTaskRequest is the JSON body for updating a task. ParentID and
// recurrence directives are explicit so "leave unchanged" and "clear"
// stay distinguishable.
type UpdateTaskRequest struct {
	TaskRequest
	// ParentID: absent leaves the parent unchanged; "" detaches.
	ParentID         *string `json:"parent_id,omitempty"`
	RemoveRecurrence bool    `json:"remove_recurrence,omitempty"`
}

// ToUpdateForm converts the request into a validated update form for
// the task with the given client id.
func (r *UpdateTaskRequest) ToUpdateForm(clientID string) (usecase.UpdateTaskForm, error) {
	p := newFieldParser()
	form := usecase.UpdateTaskForm{
		ClientID:         clientID,
		Name:             r.Name,
		Note:             r.Note,
		DeadlineDate:     p.date("deadline_date", r.DeadlineDate),
		DeadlineTime:     p.timeOfDay("deadline_time", r.DeadlineTime),
		StartAfterDate:   p.date("start_after_date", r.StartAfterDate),
		StartAfterTime:   p.timeOfDay("start_after_time", r.StartAfterTime),
		ScheduledDate:    p.date("scheduled_date", r.ScheduledDate),
		ScheduledTime:    p.timeOfDay("scheduled_time", r.ScheduledTime),
		ParentID:         r.ParentID,
		RemoveRecurrence: r.RemoveRecurrence,
	}
	if r.Recurrence != nil {
		form.Recurrence = r.Recurrence.toInput(p)
	}
	return form, p.err()
}

// SignInRequest carries the already-verified OAuth profile. Token
// exchange and verification happen upstream of this API.
type SignInRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Timezone string `json:"timezone,omitempty"`
}

// TimezoneRequest updates the signed-in user's timezone
type TimezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CreatedResponse reports the id of a newly created task
type CreatedResponse struct {
	ID string `json:"id"`
}
