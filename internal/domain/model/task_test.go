package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidTaskID(t *testing.T) {
	valid := []string{
		"backup",
		"backup-daily",
		"backup.daily",
		"backup_daily_2",
		"a",
		"0",
		strings.Repeat("x", 256),
	}
	for _, id := range valid {
		assert.True(t, ValidTaskID(id), "expected %q to be valid", id)
	}

	invalid := []string{
		"",
		"Backup",                 // uppercase
		"backup daily",           // space
		"backup/daily",           // slash
		"sløk",                   // non-ascii
		"task!",                  // punctuation
		strings.Repeat("x", 257), // too long
	}
	for _, id := range invalid {
		assert.False(t, ValidTaskID(id), "expected %q to be invalid", id)
	}
}

func TestCreateTaskRequest_Validate(t *testing.T) {
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repeats := "5.seconds"
	empty := "  "

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr string
	}{
		{
			name: "valid minimal",
			req:  CreateTaskRequest{ID: "t1", Payload: "log.info:hello"},
		},
		{
			name: "valid with due",
			req:  CreateTaskRequest{ID: "t1", Payload: "x", Due: &due},
		},
		{
			name: "valid with repeats",
			req:  CreateTaskRequest{ID: "t1", Payload: "x", Repeats: &repeats},
		},
		{
			name:    "missing id",
			req:     CreateTaskRequest{Payload: "x"},
			wantErr: "id is required",
		},
		{
			name:    "bad id charset",
			req:     CreateTaskRequest{ID: "Has Space", Payload: "x"},
			wantErr: "id may only contain",
		},
		{
			name:    "missing payload",
			req:     CreateTaskRequest{ID: "t1"},
			wantErr: "payload is required",
		},
		{
			name:    "both due and repeats",
			req:     CreateTaskRequest{ID: "t1", Payload: "x", Due: &due, Repeats: &repeats},
			wantErr: "mutually exclusive",
		},
		{
			name:    "blank repeats",
			req:     CreateTaskRequest{ID: "t1", Payload: "x", Repeats: &empty},
			wantErr: "repeats cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateTaskRequest_ShouldAutoStart(t *testing.T) {
	req := CreateTaskRequest{ID: "t1", Payload: "x"}
	assert.True(t, req.ShouldAutoStart())

	off := false
	req.AutoStart = &off
	assert.False(t, req.ShouldAutoStart())

	on := true
	req.AutoStart = &on
	assert.True(t, req.ShouldAutoStart())
}

func TestCreateTaskRequest_WantsSchedule(t *testing.T) {
	req := CreateTaskRequest{ID: "t1", Payload: "x"}
	assert.False(t, req.WantsSchedule())

	due := time.Now()
	req.Due = &due
	assert.True(t, req.WantsSchedule())

	repeats := "1.days"
	req = CreateTaskRequest{ID: "t1", Payload: "x", Repeats: &repeats}
	assert.True(t, req.WantsSchedule())
}

func TestUpdateTaskRequest_Validate(t *testing.T) {
	payload := "log.info:updated"
	empty := ""
	desc := "a description"

	tests := []struct {
		name    string
		req     UpdateTaskRequest
		wantErr string
	}{
		{
			name: "payload only",
			req:  UpdateTaskRequest{Payload: &payload},
		},
		{
			name: "description only",
			req:  UpdateTaskRequest{Description: &desc},
		},
		{
			name:    "no updates",
			req:     UpdateTaskRequest{},
			wantErr: "at least one field",
		},
		{
			name:    "empty payload",
			req:     UpdateTaskRequest{Payload: &empty},
			wantErr: "payload cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestScheduleTaskRequest_Validate(t *testing.T) {
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	repeats := "sunday.22.00.00"

	tests := []struct {
		name    string
		req     ScheduleTaskRequest
		wantErr string
	}{
		{
			name: "with due",
			req:  ScheduleTaskRequest{TaskID: "t1", Due: &due},
		},
		{
			name: "with repeats",
			req:  ScheduleTaskRequest{TaskID: "t1", Repeats: &repeats},
		},
		{
			name:    "missing task id",
			req:     ScheduleTaskRequest{Due: &due},
			wantErr: "task_id is required",
		},
		{
			name:    "neither due nor repeats",
			req:     ScheduleTaskRequest{TaskID: "t1"},
			wantErr: "either due or repeats",
		},
		{
			name:    "both due and repeats",
			req:     ScheduleTaskRequest{TaskID: "t1", Due: &due, Repeats: &repeats},
			wantErr: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSchedule_IsRecurring(t *testing.T) {
	s := Schedule{ID: 1, TaskID: "t1", Due: time.Now()}
	assert.False(t, s.IsRecurring())

	repeats := "5.minutes"
	s.Repeats = &repeats
	assert.True(t, s.IsRecurring())

	empty := ""
	s.Repeats = &empty
	assert.False(t, s.IsRecurring())
}
