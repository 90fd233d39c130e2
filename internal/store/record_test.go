package store

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nick-dorsch/things2do/pkg/models"
)

var loadTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func sampleTasks() []*models.Task {
	created := time.Date(2024, 2, 29, 23, 59, 58, 0, time.Local)
	end := time.Date(2024, 7, 4, 0, 0, 0, 0, time.Local)

	withEnd := models.NewTask("file taxes", "federal + state", 21.5, 3.25, 0.1, -0.75, &end, created)
	withEnd.LastUpdate = created.Add(49 * time.Hour)

	noEnd := models.NewTask("写报告", "unicode <b>&</b> description", 0.333333333333, 27, -1, 0, nil, created)
	return []*models.Task{withEnd, noEnd}
}

func TestRoundTrip(t *testing.T) {
	tasks := sampleTasks()

	data, err := json.Marshal(Serialize(tasks))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	res, err := Deserialize(data, loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Rejected) != 0 || len(res.Anomalies) != 0 {
		t.Fatalf("Expected clean load, got rejected=%v anomalies=%v", res.Rejected, res.Anomalies)
	}
	if len(res.Tasks) != len(tasks) {
		t.Fatalf("Expected %d tasks, got %d", len(tasks), len(res.Tasks))
	}

	for i, want := range tasks {
		got := res.Tasks[i]
		if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description {
			t.Errorf("task %d: identity mismatch: got %+v, want %+v", i, got, want)
		}
		if got.Importance != want.Importance || got.Urgency != want.Urgency {
			t.Errorf("task %d: position (%v, %v), want (%v, %v)", i, got.Importance, got.Urgency, want.Importance, want.Urgency)
		}
		if got.ImportanceStep != want.ImportanceStep || got.UrgencyStep != want.UrgencyStep {
			t.Errorf("task %d: steps mismatch", i)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("task %d: CreatedAt %v, want %v", i, got.CreatedAt, want.CreatedAt)
		}
		if !got.LastUpdate.Equal(want.LastUpdate) {
			t.Errorf("task %d: LastUpdate %v, want %v", i, got.LastUpdate, want.LastUpdate)
		}
		switch {
		case want.EndDate == nil && got.EndDate != nil:
			t.Errorf("task %d: expected no end date, got %v", i, got.EndDate)
		case want.EndDate != nil && (got.EndDate == nil || !got.EndDate.Equal(*want.EndDate)):
			t.Errorf("task %d: EndDate %v, want %v", i, got.EndDate, want.EndDate)
		}
	}
}

func TestSerializeFormats(t *testing.T) {
	records := Serialize(sampleTasks())
	if records[0].CreatedAt != "2024-02-29 23:59:58" {
		t.Errorf("Unexpected created_at format: %s", records[0].CreatedAt)
	}
	if records[0].EndDate == nil || *records[0].EndDate != "2024-07-04" {
		t.Errorf("Unexpected end_date: %v", records[0].EndDate)
	}
	if records[1].EndDate != nil {
		t.Errorf("Expected nil end_date, got %v", *records[1].EndDate)
	}

	data, err := json.Marshal(records[1])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"end_date":null`) {
		t.Errorf("Expected end_date null in %s", data)
	}
}

func TestDeserializeMalformedDate(t *testing.T) {
	data := `[
		{"name": "a", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-01 10:00:00", "last_update": "2024-01-01 10:00:00", "end_date": "next tuesday"},
		{"name": "b", "description": "", "importance": 3, "urgency": 4, "importance_step": 1, "urgency_step": 1,
		 "created_at": "2024-01-01 10:00:00", "last_update": "2024-01-02 10:00:00", "end_date": "2024-03-01"}
	]`
	res, err := Deserialize([]byte(data), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(res.Tasks))
	}
	if res.Tasks[0].EndDate != nil {
		t.Errorf("Expected first task without end date, got %v", res.Tasks[0].EndDate)
	}
	if res.Tasks[1].EndDate == nil {
		t.Error("Expected second task to keep its end date")
	}
	if len(res.Anomalies) != 1 || res.Anomalies[0].Field != "end_date" || res.Anomalies[0].Index != 0 {
		t.Errorf("Expected one end_date anomaly on record 0, got %+v", res.Anomalies)
	}
}

func TestDeserializeEndDateWrongType(t *testing.T) {
	data := `[{"name": "a", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		"created_at": "2024-01-01 10:00:00", "last_update": "2024-01-01 10:00:00", "end_date": 20240101}]`
	res, err := Deserialize([]byte(data), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].EndDate != nil {
		t.Fatalf("Expected one task without end date, got %+v", res.Tasks)
	}
}

func TestDeserializeRejectsMalformedRecords(t *testing.T) {
	valid := `{"name": "ok", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		"created_at": "2024-01-01 10:00:00", "last_update": "2024-01-01 10:00:00", "end_date": null}`

	tests := []struct {
		name   string
		record string
		field  string
	}{
		{"missing name", `{"description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0}`, "name"},
		{"empty name", `{"name": " ", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0}`, "name"},
		{"missing description", `{"name": "x", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0}`, "description"},
		{"importance wrong type", `{"name": "x", "description": "", "importance": "high", "urgency": 2, "importance_step": 0, "urgency_step": 0}`, "importance"},
		{"missing urgency", `{"name": "x", "description": "", "importance": 1, "importance_step": 0, "urgency_step": 0}`, "urgency"},
		{"null step", `{"name": "x", "description": "", "importance": 1, "urgency": 2, "importance_step": null, "urgency_step": 0}`, "importance_step"},
		{"missing urgency step", `{"name": "x", "description": "", "importance": 1, "urgency": 2, "importance_step": 0}`, "urgency_step"},
		{"not an object", `"just a string"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "[" + tt.record + "," + valid + "]"
			res, err := Deserialize([]byte(data), loadTime)
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if len(res.Tasks) != 1 || res.Tasks[0].Name != "ok" {
				t.Fatalf("Expected only the valid record to load, got %+v", res.Tasks)
			}
			if len(res.Rejected) != 1 {
				t.Fatalf("Expected 1 rejection, got %d", len(res.Rejected))
			}
			rej := res.Rejected[0]
			if rej.Index != 0 {
				t.Errorf("Expected rejection of record 0, got %d", rej.Index)
			}
			if rej.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, rej.Field)
			}

			var malformed *MalformedRecordError
			if !errors.As(res.Err(), &malformed) {
				t.Errorf("Expected Err() to wrap a MalformedRecordError, got %v", res.Err())
			}
		})
	}
}

func TestDeserializeTimestampDefaults(t *testing.T) {
	data := `[
		{"name": "no times", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0},
		{"name": "bad last", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-01 10:00:00", "last_update": "yesterday"},
		{"name": "backwards", "description": "", "importance": 1, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-05 10:00:00", "last_update": "2024-01-01 10:00:00"}
	]`
	res, err := Deserialize([]byte(data), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(res.Tasks))
	}

	if !res.Tasks[0].CreatedAt.Equal(loadTime) || !res.Tasks[0].LastUpdate.Equal(loadTime) {
		t.Errorf("Expected missing timestamps to default to load time, got %v / %v", res.Tasks[0].CreatedAt, res.Tasks[0].LastUpdate)
	}
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	if !res.Tasks[1].LastUpdate.Equal(created) {
		t.Errorf("Expected bad last_update to fall back to created_at, got %v", res.Tasks[1].LastUpdate)
	}
	if res.Tasks[2].LastUpdate.Before(res.Tasks[2].CreatedAt) {
		t.Errorf("Expected last_update >= created_at, got %v < %v", res.Tasks[2].LastUpdate, res.Tasks[2].CreatedAt)
	}
	for _, task := range res.Tasks {
		if task.ID == "" {
			t.Errorf("Expected generated ID for %s", task.Name)
		}
	}
}

func TestDeserializeLegacyKeys(t *testing.T) {
	data := `[{"name": "legacy", "description": "d", "x": 5, "y": 6.5, "step_x": 0.5, "step_y": -1,
		"created_at": "2023-11-02 08:15:00", "last_update": "2023-11-03 08:15:00", "end_date": null}]`
	res, err := Deserialize([]byte(data), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d (rejected %v)", len(res.Tasks), res.Rejected)
	}
	task := res.Tasks[0]
	if task.Importance != 5 || task.Urgency != 6.5 || task.ImportanceStep != 0.5 || task.UrgencyStep != -1 {
		t.Errorf("Legacy fields not mapped: %+v", task)
	}
}

func TestDeserializeNotAnArray(t *testing.T) {
	if _, err := Deserialize([]byte(`{"name": "x"}`), loadTime); err == nil {
		t.Error("Expected error for a non-array document")
	}
	res, err := Deserialize([]byte(`[]`), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 0 || res.Err() != nil {
		t.Errorf("Expected empty clean result, got %+v", res)
	}
}

func TestDeserializeIDs(t *testing.T) {
	data := `[
		{"id": "a", "name": "one", "description": "", "importance": 1, "urgency": 1, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-01 00:00:00", "last_update": "2024-01-01 00:00:00", "end_date": null},
		{"id": "a", "name": "two", "description": "", "importance": 2, "urgency": 2, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-01 00:00:00", "last_update": "2024-01-01 00:00:00", "end_date": null},
		{"name": "three", "description": "", "importance": 3, "urgency": 3, "importance_step": 0, "urgency_step": 0,
		 "created_at": "2024-01-01 00:00:00", "last_update": "2024-01-01 00:00:00", "end_date": null}
	]`
	res, err := Deserialize([]byte(data), loadTime)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(res.Tasks))
	}

	if res.Tasks[0].ID != "a" {
		t.Errorf("Expected first id kept, got %s", res.Tasks[0].ID)
	}
	if res.Tasks[1].ID == "a" || res.Tasks[1].ID == "" {
		t.Errorf("Expected duplicate id replaced, got %q", res.Tasks[1].ID)
	}
	if res.Tasks[2].ID == "" {
		t.Error("Expected missing id to be generated")
	}

	if len(res.Anomalies) != 1 || res.Anomalies[0].Field != "id" || !errors.Is(res.Anomalies[0].Err, errDuplicateID) {
		t.Errorf("Expected one duplicate id anomaly, got %+v", res.Anomalies)
	}
}
