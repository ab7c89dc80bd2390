package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

func TestClient_SignInThenSubmit(t *testing.T) {
	var got models.TelemetryReading
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/sign-in":
			var in credentials
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Email != "a@b.c" || in.Password != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"token":"tok"}`))
		case "/api/v1/telemetry":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	if err := c.SignIn(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	if err := c.Submit(context.Background(), models.Session{}, models.TelemetryReading{DeviceID: 3, Timestamp: ts, EnergyUsage: 0.15}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.DeviceID != 3 || !got.Timestamp.Equal(ts) || got.EnergyUsage != 0.15 {
		t.Fatalf("server received %+v", got)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   apperr.Kind
	}{
		{http.StatusServiceUnavailable, apperr.KindTransientIO},
		{http.StatusInternalServerError, apperr.KindTransientIO},
		{http.StatusTooManyRequests, apperr.KindTransientIO},
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusBadRequest, apperr.KindValidation},
		{http.StatusUnauthorized, apperr.KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, nil).WithToken("t").Submit(context.Background(), models.Session{}, models.TelemetryReading{})
			if apperr.KindOf(err) != tt.want {
				t.Fatalf("kind = %q, want %q (%v)", apperr.KindOf(err), tt.want, err)
			}
		})
	}
}

func TestClient_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url, &http.Client{Timeout: time.Second}).Submit(context.Background(), models.Session{}, models.TelemetryReading{})
	if !apperr.IsTransient(err) {
		t.Fatalf("want transient, got %v", err)
	}
}

func TestClient_Devices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Fridge","category":"refrigerator","room":"kitchen"}]`))
	}))
	defer srv.Close()

	devices, err := NewClient(srv.URL, nil).Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	if len(devices) != 1 || devices[0].Category != models.CategoryRefrigerator {
		t.Fatalf("devices = %+v", devices)
	}
}
