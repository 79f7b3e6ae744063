package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"clinic/internal/domains/appointment/model"
	"clinic/internal/domains/appointment/repository"
	"clinic/shared/cache"
	gDto "clinic/shared/dto"
)

var (
	_ repository.Appointment = (*ledger)(nil)
	_ cache.RedisCache       = (*memCache)(nil)
)

// ledger is an in-memory appointment store that enforces the active-slot uniqueness the
// database index provides.
type ledger struct {
	mu     sync.Mutex
	active map[string]string
	rows   map[string]model.Appointment

	// hold runs once, inside the first BookedTimes call, after the booked times were read.
	hold func()
	held bool
}

func newLedger() *ledger {
	return &ledger{
		active: map[string]string{},
		rows:   map[string]model.Appointment{},
	}
}

func slotOf(doctorID, date, clock string) string {
	return doctorID + "|" + date + "|" + clock
}

func filterValue(filter gDto.FilterGroup, field string) string {
	for _, item := range filter.Filters {
		if f, ok := item.(gDto.Filter); ok && f.Field == field {
			return fmt.Sprint(f.Value)
		}
	}

	return ""
}

func (l *ledger) Insert(_ context.Context, appointment model.Appointment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := slotOf(appointment.DoctorID, appointment.Date.String(), appointment.Time)
	if _, taken := l.active[key]; taken {
		return fmt.Errorf("%w: %s", model.ErrSlotTaken, key)
	}

	l.active[key] = appointment.ID
	l.rows[appointment.ID] = appointment

	return nil
}

func (l *ledger) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rows[filterValue(filter, model.FieldID)], nil
}

func (l *ledger) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]model.Appointment, 0, len(l.rows))
	for _, row := range l.rows {
		res = append(res, row)
	}

	return res, nil
}

// Exist always misses so every racer reaches the insert.
func (l *ledger) Exist(context.Context, gDto.FilterGroup) (bool, error) {
	return false, nil
}

func (l *ledger) Count(context.Context, gDto.FilterGroup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.active), nil
}

// Update applies fields to the row named by the id filter, only while its status still
// matches the status filter.
func (l *ledger) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[filterValue(filter, model.FieldID)]
	if !ok {
		return 0, nil
	}

	if current := filterValue(filter, model.FieldStatus); current != "" && current != row.Status {
		return 0, nil
	}

	if status, ok := fields[model.FieldStatus].(string); ok {
		row.Status = status
		if status == model.StatusCancelled {
			delete(l.active, slotOf(row.DoctorID, row.Date.String(), row.Time))
		}
	}

	if notes, ok := fields[model.FieldNotes].(string); ok {
		row.Notes = notes
	}

	l.rows[row.ID] = row

	return 1, nil
}

func (l *ledger) BookedTimes(_ context.Context, doctorID, date string) ([]string, error) {
	l.mu.Lock()

	prefix := slotOf(doctorID, date, "")
	booked := []string{}

	for key := range l.active {
		if strings.HasPrefix(key, prefix) {
			booked = append(booked, strings.TrimPrefix(key, prefix))
		}
	}

	hold := l.hold
	if l.held {
		hold = nil
	}

	l.held = true
	l.mu.Unlock()

	slices.Sort(booked)

	if hold != nil {
		hold()
	}

	return booked, nil
}

// memCache keeps JSON values in a map the way the Redis cache stores them. Expiry is not modelled.
type memCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ int) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = raw

	return nil
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	return json.Unmarshal(raw, value)
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.values, key)
	}

	return nil
}

func (c *memCache) Clear(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.values, key)
		}
	}

	return nil
}

func (c *memCache) Increment(_ context.Context, key string, _ int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	if raw, ok := c.values[key]; ok {
		if err := json.Unmarshal(raw, &current); err != nil {
			return 0, err
		}
	}

	current++
	c.values[key] = []byte(strconv.FormatInt(current, 10))

	return current, nil
}

// keys lists what is cached under prefix, for assertions.
func (c *memCache) keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := []string{}
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			res = append(res, key)
		}
	}

	slices.Sort(res)

	return res
}
