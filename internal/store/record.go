package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nick-dorsch/things2do/pkg/models"
)

const (
	// TimestampLayout is the persisted form of created_at and last_update.
	TimestampLayout = "2006-01-02 15:04:05"
	// DateLayout is the persisted form of end_date.
	DateLayout = models.DateLayout
)

// Record is the flat, persisted form of a task.
type Record struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Importance     float64 `json:"importance"`
	Urgency        float64 `json:"urgency"`
	ImportanceStep float64 `json:"importance_step"`
	UrgencyStep    float64 `json:"urgency_step"`
	CreatedAt      string  `json:"created_at"`
	LastUpdate     string  `json:"last_update"`
	EndDate        *string `json:"end_date"`
}

// rawRecord is what a record decodes into. Pointers tell missing fields from
// zero values; the short keys are the ones older files used.
type rawRecord struct {
	ID             *string         `json:"id"`
	Name           *string         `json:"name"`
	Description    *string         `json:"description"`
	Importance     *float64        `json:"importance"`
	Urgency        *float64        `json:"urgency"`
	ImportanceStep *float64        `json:"importance_step"`
	UrgencyStep    *float64        `json:"urgency_step"`
	X              *float64        `json:"x"`
	Y              *float64        `json:"y"`
	StepX          *float64        `json:"step_x"`
	StepY          *float64        `json:"step_y"`
	CreatedAt      json.RawMessage `json:"created_at"`
	LastUpdate     json.RawMessage `json:"last_update"`
	EndDate        json.RawMessage `json:"end_date"`
}

// MalformedRecordError rejects a single record. Other records still load.
type MalformedRecordError struct {
	Index int
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: field %q: %v", e.Index, e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

var (
	errMissing     = errors.New("missing required field")
	errDuplicateID = errors.New("duplicate id, assigned a new one")
)

// Anomaly is a field that could not be read and was replaced by a safe
// default. The record itself was kept.
type Anomaly struct {
	Index int
	Name  string
	Field string
	Value string
	Err   error
}

// Result is the outcome of Deserialize.
type Result struct {
	Tasks     []*models.Task
	Rejected  []*MalformedRecordError
	Anomalies []Anomaly
}

// Err joins every rejection, or returns nil when all records loaded.
func (r *Result) Err() error {
	errs := make([]error, len(r.Rejected))
	for i, e := range r.Rejected {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// FormatTimestamp renders t in TimestampLayout, local time.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp reads a TimestampLayout string in local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// FormatDate renders an optional end date; nil stays nil.
func FormatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Local().Format(DateLayout)
	return &s
}

// ParseDate reads a DateLayout string in local time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// Serialize produces one record per task, in the order given.
func Serialize(tasks []*models.Task) []Record {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, Record{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Importance:     t.Importance,
			Urgency:        t.Urgency,
			ImportanceStep: t.ImportanceStep,
			UrgencyStep:    t.UrgencyStep,
			CreatedAt:      FormatTimestamp(t.CreatedAt),
			LastUpdate:     FormatTimestamp(t.LastUpdate),
			EndDate:        FormatDate(t.EndDate),
		})
	}
	return records
}

// Deserialize reads a JSON array of records. A document that is not an array
// is an error; a bad record only rejects itself. now fills in a missing
// created_at.
func Deserialize(data []byte, now time.Time) (*Result, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode task records: %w", err)
	}

	res := &Result{}
	seen := make(map[string]bool, len(raws))
	for i, raw := range raws {
		task, anomalies, err := decodeRecord(i, raw, now)
		if err != nil {
			res.Rejected = append(res.Rejected, err)
			continue
		}
		if seen[task.ID] {
			anomalies = append(anomalies, Anomaly{
				Index: i,
				Name:  task.Name,
				Field: "id",
				Value: task.ID,
				Err:   errDuplicateID,
			})
			task.ID = uuid.New().String()
		}
		seen[task.ID] = true
		res.Tasks = append(res.Tasks, task)
		res.Anomalies = append(res.Anomalies, anomalies...)
	}
	return res, nil
}

func decodeRecord(index int, raw json.RawMessage, now time.Time) (*models.Task, []Anomaly, *MalformedRecordError) {
	var r rawRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		field := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return nil, nil, &MalformedRecordError{Index: index, Field: field, Err: err}
	}

	importance := firstOf(r.Importance, r.X)
	urgency := firstOf(r.Urgency, r.Y)
	importanceStep := firstOf(r.ImportanceStep, r.StepX)
	urgencyStep := firstOf(r.UrgencyStep, r.StepY)

	switch {
	case r.Name == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "name", Err: errMissing}
	case strings.TrimSpace(*r.Name) == "":
		return nil, nil, &MalformedRecordError{Index: index, Field: "name", Err: models.ErrEmptyName}
	case r.Description == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "description", Err: errMissing}
	case importance == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "importance", Err: errMissing}
	case urgency == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "urgency", Err: errMissing}
	case importanceStep == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "importance_step", Err: errMissing}
	case urgencyStep == nil:
		return nil, nil, &MalformedRecordError{Index: index, Field: "urgency_step", Err: errMissing}
	}

	t := &models.Task{
		Name:           *r.Name,
		Description:    *r.Description,
		Importance:     *importance,
		Urgency:        *urgency,
		ImportanceStep: *importanceStep,
		UrgencyStep:    *urgencyStep,
	}
	if r.ID != nil && *r.ID != "" {
		t.ID = *r.ID
	} else {
		t.ID = uuid.New().String()
	}

	var anomalies []Anomaly
	note := func(field string, value json.RawMessage, err error) {
		anomalies = append(anomalies, Anomaly{
			Index: index,
			Name:  t.Name,
			Field: field,
			Value: string(value),
			Err:   err,
		})
	}

	created, err := parseTimestampField(r.CreatedAt)
	if err != nil {
		note("created_at", r.CreatedAt, err)
		created = models.Timestamp(now)
	}
	t.CreatedAt = created

	last, err := parseTimestampField(r.LastUpdate)
	if err != nil {
		note("last_update", r.LastUpdate, err)
		last = created
	}
	if last.Before(created) {
		note("last_update", r.LastUpdate, errors.New("earlier than created_at"))
		last = created
	}
	t.LastUpdate = last

	end, err := rawString(r.EndDate)
	if err != nil {
		note("end_date", r.EndDate, err)
	} else if end != "" {
		d, err := ParseDate(end)
		if err != nil {
			note("end_date", r.EndDate, err)
		} else {
			t.EndDate = &d
		}
	}

	return t, anomalies, nil
}

func parseTimestampField(raw json.RawMessage) (time.Time, error) {
	s, err := rawString(raw)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, errMissing
	}
	return ParseTimestamp(s)
}

// rawString decodes an optional string field. Absent and null read as "".
func rawString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("not a string: %s", raw)
	}
	return s, nil
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
