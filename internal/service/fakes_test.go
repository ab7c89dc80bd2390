package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

// fakeStore is an in-memory stand-in for the three SQL repositories.
// Err fields, when set, are returned by the matching operation.
type fakeStore struct {
	mu sync.Mutex

	nextID    int
	devices   map[int]models.Device
	schedules map[int][]models.ScheduleBlock
	readings  map[int]map[int64]models.TelemetryReading

	replaceErr error
	upsertErr  error
	listErr    error

	replaceCalls int
	upserts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices:   make(map[int]models.Device),
		schedules: make(map[int][]models.ScheduleBlock),
		readings:  make(map[int]map[int64]models.TelemetryReading),
	}
}

// addDevice registers a device directly and returns its id.
func (f *fakeStore) addDevice(accountID int, name string, cat models.Category, room string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.devices[f.nextID] = models.Device{
		ID: f.nextID, AccountID: accountID, Name: name, Category: cat, Room: room, PowerRatingKW: 1,
	}
	return f.nextID
}

type fakeDevices struct{ *fakeStore }
type fakeSchedules struct{ *fakeStore }
type fakeTelemetry struct{ *fakeStore }

func (f fakeDevices) Create(_ context.Context, d models.Device) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d.ID = f.nextID
	f.devices[d.ID] = d
	return d.ID, nil
}

func (f fakeDevices) Get(_ context.Context, accountID, id int) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok || d.AccountID != accountID {
		return models.Device{}, apperr.NotFound("device", id)
	}
	return d, nil
}

func (f fakeDevices) ListByAccount(_ context.Context, accountID int) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Device{}
	for _, d := range f.devices {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeDevices) Update(_ context.Context, d models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.devices[d.ID]
	if !ok || cur.AccountID != d.AccountID {
		return apperr.NotFound("device", d.ID)
	}
	d.CreatedAt = cur.CreatedAt
	f.devices[d.ID] = d
	return nil
}

func (f fakeDevices) Delete(_ context.Context, accountID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.devices[id]
	if !ok || cur.AccountID != accountID {
		return apperr.NotFound("device", id)
	}
	delete(f.devices, id)
	delete(f.schedules, id)
	delete(f.readings, id)
	return nil
}

func (f fakeSchedules) Get(_ context.Context, deviceID int) ([]models.ScheduleBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ScheduleBlock{}, f.schedules[deviceID]...), nil
}

func (f fakeSchedules) Replace(_ context.Context, deviceID int, blocks []models.ScheduleBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.schedules[deviceID] = append([]models.ScheduleBlock{}, blocks...)
	return nil
}

func (f fakeSchedules) ListByAccount(_ context.Context, accountID int) (map[int][]models.ScheduleBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int][]models.ScheduleBlock)
	for id, blocks := range f.schedules {
		if d, ok := f.devices[id]; ok && d.AccountID == accountID && len(blocks) > 0 {
			out[id] = append([]models.ScheduleBlock{}, blocks...)
		}
	}
	return out, nil
}

func (f fakeTelemetry) Upsert(_ context.Context, r models.TelemetryReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	if f.readings[r.DeviceID] == nil {
		f.readings[r.DeviceID] = make(map[int64]models.TelemetryReading)
	}
	f.readings[r.DeviceID][r.Timestamp.Unix()] = r
	return nil
}

func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}

func (f fakeTelemetry) collect(ids map[int]bool, from, to time.Time) []models.TelemetryReading {
	out := []models.TelemetryReading{}
	for id := range ids {
		for _, r := range f.readings[id] {
			if inRange(r.Timestamp, from, to) {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out
}

func (f fakeTelemetry) ListByDevice(_ context.Context, deviceID int, from, to time.Time) ([]models.TelemetryReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.collect(map[int]bool{deviceID: true}, from, to), nil
}

func (f fakeTelemetry) ListByAccount(_ context.Context, accountID int, from, to time.Time) ([]models.TelemetryReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make(map[int]bool)
	for id, d := range f.devices {
		if d.AccountID == accountID {
			ids[id] = true
		}
	}
	return f.collect(ids, from, to), nil
}

// put stores a reading without going through the service.
func (f *fakeStore) put(deviceID int, ts time.Time, kwh float64) {
	_ = fakeTelemetry{f}.Upsert(context.Background(), models.TelemetryReading{DeviceID: deviceID, Timestamp: ts, EnergyUsage: kwh})
}

var testSession = models.Session{AccountID: 1}

// monday1030 is Monday 2 June 2025, 10:30 UTC.
var monday1030 = time.Date(2025, time.June, 2, 10, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
