package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"home_energy/internal/models"
	"home_energy/internal/service"
)

func decodeResult(t *testing.T, body []byte) models.Result {
	t.Helper()
	var res models.Result
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("unmarshal result: %v (%s)", err, body)
	}
	return res
}

func TestUsageHandlers(t *testing.T) {
	u := &mockUsage{
		current: models.CurrentUsage{
			PerDevice: []models.DeviceUsage{{DeviceID: 1, Name: "AC", Room: "office", UsageKW: 2}},
			PerRoom:   map[string]float64{"office": 2},
			TotalKW:   2,
		},
		daily:   1.5,
		monthly: models.MonthlyCost{WeeklyKWh: 16, Amount: 8.23, Currency: "USD", DaysInMonth: 30},
	}
	r := newTestRouter(&service.Service{Authorization: validAuth(), Usage: u})

	res := decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/current", nil).Body.Bytes())
	if res.Kind != models.ResultDeviceList || res.Devices == nil || res.Devices.TotalKW != 2 {
		t.Fatalf("unexpected current usage %+v", res)
	}

	res = decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/daily", nil).Body.Bytes())
	if res.Kind != models.ResultScalar || res.Scalar.Value != 1.5 || res.Scalar.Unit != "kWh" {
		t.Fatalf("unexpected daily %+v", res)
	}

	res = decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/monthly-cost", nil).Body.Bytes())
	if res.Kind != models.ResultScalar || res.Scalar.Value != 8.23 || res.Scalar.Unit != "USD" || res.Detail == nil {
		t.Fatalf("unexpected monthly %+v", res)
	}
}

func TestUsageHandlers_EmptyAccount(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: validAuth(), Usage: &mockUsage{}})

	res := decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/current", nil).Body.Bytes())
	if res.Kind != models.ResultEmpty {
		t.Fatalf("expected empty result, got %+v", res)
	}
	res = decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/daily", nil).Body.Bytes())
	if res.Kind != models.ResultScalar || res.Scalar.Value != 0 {
		t.Fatalf("expected zero scalar, got %+v", res)
	}
}

func TestTimelineHandler(t *testing.T) {
	ts := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	actual, forecast := 0.75, 2.0
	tl := &mockTimeline{entries: []models.TimelineEntry{
		{Timestamp: ts, Kind: models.EntryActual, ActualUsage: &actual},
		{Timestamp: ts.Add(2 * time.Hour), Kind: models.EntryForecast, ForecastUsage: &forecast},
	}}
	r := newTestRouter(&service.Service{Authorization: validAuth(), Timeline: tl})

	w := do(r, http.MethodGet, "/api/v1/usage/timeline?view=Weekly", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("timeline status=%d", w.Code)
	}
	if tl.lastView != models.ViewWeekly {
		t.Fatalf("view not normalized: %q", tl.lastView)
	}
	res := decodeResult(t, w.Body.Bytes())
	if res.Kind != models.ResultSeries || len(res.Series) != 2 || res.View != models.ViewWeekly {
		t.Fatalf("unexpected timeline %+v", res)
	}
	if res.Series[0].ForecastUsage != nil || res.Series[1].ActualUsage != nil {
		t.Fatalf("entries must carry exactly one value: %+v", res.Series)
	}

	// both null fields are serialized explicitly
	var raw struct {
		Series []map[string]any `json:"series"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, ok := raw.Series[0]["forecast_usage"]; !ok {
		t.Fatalf("forecast_usage key should be present as null")
	}

	do(r, http.MethodGet, "/api/v1/usage/timeline", nil)
	if tl.lastView != models.ViewDaily {
		t.Fatalf("default view = %q, want daily", tl.lastView)
	}

	tl.entries = nil
	res = decodeResult(t, do(r, http.MethodGet, "/api/v1/usage/timeline?view=monthly", nil).Body.Bytes())
	if res.Kind != models.ResultEmpty {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
