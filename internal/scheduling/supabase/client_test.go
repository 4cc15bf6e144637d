package supabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling/supabase"
)

const appointmentsJSON = `[
	{
		"id": "6f1c2b8e-4c1a-4a53-9d5e-0b6f7f3f2a11",
		"date": "2024-07-15",
		"hour": 10, "minute": 0, "duration": 50,
		"fee": 1500.5,
		"description": null,
		"status": null,
		"client_id": "0b7d6c43-1f0e-4b89-8a9a-3f7e7a9c1d22",
		"psychologist_id": "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		"clients": {"name": "Ayşe Yılmaz"},
		"psychologists": {"name": "Dr. Elif Şahin", "color": "#10B981"}
	},
	{
		"id": "7a2d3c9f-5d2b-4b64-8e6f-1c7a8a4a3b22",
		"date": "not-a-date",
		"hour": 9, "minute": 30, "duration": 45,
		"fee": "750",
		"status": "cancelled",
		"client_id": "0b7d6c43-1f0e-4b89-8a9a-3f7e7a9c1d22",
		"psychologist_id": "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		"clients": null,
		"psychologists": null
	}
]`

func TestClient_ListAppointments(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/appointments", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("select"), "psychologists(name,color)")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(appointmentsJSON))
	}))
	defer ts.Close()

	honolulu := time.FixedZone("HST", -10*3600)
	c := supabase.NewClient(ts.URL+"/", "secret", honolulu, time.Second)

	got, err := c.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, 15, first.Date.Day(), "a plain date is taken as written")
	assert.Equal(t, time.July, first.Date.Month())
	assert.Equal(t, honolulu, first.Date.Location())
	assert.Equal(t, int64(150050), first.Fee)
	assert.Equal(t, scheduling.StatusScheduled, first.Status)
	assert.Equal(t, "Ayşe Yılmaz", first.ClientName)
	assert.Equal(t, "#10B981", first.PsychologistColor)

	second := got[1]
	assert.True(t, second.Date.IsZero())
	assert.Equal(t, int64(75000), second.Fee)
	assert.Equal(t, scheduling.StatusCancelled, second.Status)
	assert.Empty(t, second.ClientName)
}

func TestClient_TimestampsTakeTheLocalDay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"id": "6f1c2b8e-4c1a-4a53-9d5e-0b6f7f3f2a11", "date": "2024-07-14T21:30:00+00:00", "hour": 0, "minute": 30, "duration": 50},
			{"id": "7a2d3c9f-5d2b-4b64-8e6f-1c7a8a4a3b22", "date": "2024-07-14T23:30:00.250+03:00", "hour": 23, "minute": 30, "duration": 50},
			{"id": "8b3e4d0a-6e3c-4c75-9f70-2d8b9b5b4c33", "date": "2024-07-14T21:30:00", "hour": 21, "minute": 30, "duration": 50}
		]`))
	}))
	defer ts.Close()

	istanbul := time.FixedZone("TRT", 3*3600)

	got, err := supabase.NewClient(ts.URL, "secret", istanbul, time.Second).ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	type testCase struct {
		name string
		day  int
	}

	for i, tt := range []testCase{
		{name: "UTC instant after local midnight", day: 15},
		{name: "offset already local", day: 14},
		{name: "no offset is taken as written", day: 14},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d := got[i].Date
			assert.Equal(t, tt.day, d.Day())
			assert.Equal(t, time.July, d.Month())
			assert.Equal(t, istanbul, d.Location())
			assert.Zero(t, d.Hour())
		})
	}
}

func TestClient_ListPsychologists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/psychologists", r.URL.Path)
		assert.Equal(t, "name.asc", r.URL.Query().Get("order"))

		w.Write([]byte(`[{"id":"a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d","name":"Dr. Elif Şahin","title":null,"color":"#10B981"}]`))
	}))
	defer ts.Close()

	got, err := supabase.NewClient(ts.URL, "secret", time.UTC, 0).ListPsychologists(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. Elif Şahin", got[0].Name)
	assert.Empty(t, got[0].Title)
}

func TestClient_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := supabase.NewClient(ts.URL, "secret", time.UTC, time.Second).ListAppointments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "JWT expired")
}

func TestClient_FeedsDashboardAndCalendar(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/psychologists" {
			w.Write([]byte(`[]`))
			return
		}

		w.Write([]byte(appointmentsJSON))
	}))
	defer ts.Close()

	loc := time.FixedZone("LINT", 14*3600)
	reader := supabase.NewClient(ts.URL, "secret", loc, time.Second)
	svc := scheduling.NewService(nil, scheduling.WithReader(reader), scheduling.WithLocation(loc))

	m, err := svc.Calendar(context.Background(), 2024, time.July)
	require.NoError(t, err)
	require.Len(t, m.Day(15).Appointments, 1)

	d := svc.Dashboard(context.Background(), time.Date(2024, 7, 15, 8, 0, 0, 0, loc))
	assert.Equal(t, 1, d.TodayCount)
	assert.Equal(t, int64(150050), d.MonthRevenue)
}
