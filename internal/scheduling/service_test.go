package scheduling_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

func TestService_CreateClient(t *testing.T) {
	type args struct {
		params scheduling.ClientParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *scheduling.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: scheduling.ClientParams{Name: " Ayşe Yılmaz ", Email: "ayse@example.com"}},
			setupMock: func(m *scheduling.MockRepository) {
				m.EXPECT().
					CreateClient(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *scheduling.Client) error {
						c.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "NoEmail",
			args: args{params: scheduling.ClientParams{Name: "Mehmet Demir", Phone: "0532 000 00 00"}},
			setupMock: func(m *scheduling.MockRepository) {
				m.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:    "MissingName",
			args:    args{params: scheduling.ClientParams{Name: "   "}},
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "MalformedEmail",
			args:    args{params: scheduling.ClientParams{Name: "Ayşe", Email: "ayse-at-example"}},
			wantErr: scheduling.ErrInvalid,
		},
		{
			name: "RepoError",
			args: args{params: scheduling.ClientParams{Name: "Ayşe"}},
			setupMock: func(m *scheduling.MockRepository) {
				m.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := scheduling.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := scheduling.NewService(repo).CreateClient(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, scheduling.ErrInvalid) {
					assert.ErrorIs(t, err, scheduling.ErrInvalid)
				}

				return
			}

			require.NoError(t, err)
			assert.True(t, got.Active)
			assert.Equal(t, strings.TrimSpace(tt.args.params.Name), got.Name)
		})
	}
}

func TestService_ListClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := scheduling.NewMockRepository(ctrl)
	repo.EXPECT().
		ListClients(gomock.Any()).
		Return([]*scheduling.Client{
			{Name: "Ayşe Yılmaz", Email: "ayse@example.com"},
			{Name: "İsmail Kaya", Phone: "0532"},
			{Name: "Zeynep Ak"},
		}, nil).
		Times(2)

	svc := scheduling.NewService(repo)

	got, err := svc.ListClients(context.Background(), "ismail")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "İsmail Kaya", got[0].Name)

	got, err = svc.ListClients(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestService_CreatePsychologist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := scheduling.NewMockRepository(ctrl)
	repo.EXPECT().CreatePsychologist(gomock.Any(), gomock.Any()).Return(nil)

	svc := scheduling.NewService(repo)

	got, err := svc.CreatePsychologist(context.Background(), scheduling.PsychologistParams{Name: "Dr. Elif Şahin"})
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", got.Color)

	_, err = svc.CreatePsychologist(context.Background(), scheduling.PsychologistParams{Name: "X", Color: "blue"})
	assert.ErrorIs(t, err, scheduling.ErrInvalid)

	_, err = svc.CreatePsychologist(context.Background(), scheduling.PsychologistParams{})
	assert.ErrorIs(t, err, scheduling.ErrInvalid)
}

func TestService_CreateAppointment(t *testing.T) {
	clientID := uuid.New()
	psyID := uuid.New()

	valid := scheduling.AppointmentParams{
		ClientID:       clientID,
		PsychologistID: psyID,
		Date:           time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Hour:           10,
		Duration:       50,
		Fee:            150000,
	}

	type testCase struct {
		name      string
		params    scheduling.AppointmentParams
		setupMock func(m *scheduling.MockRepository)
		wantErr   error
	}

	lookups := func(m *scheduling.MockRepository) {
		m.EXPECT().GetClient(gomock.Any(), clientID).Return(&scheduling.Client{ID: clientID, Name: "Ayşe Yılmaz"}, nil)
		m.EXPECT().GetPsychologist(gomock.Any(), psyID).Return(&scheduling.Psychologist{ID: psyID, Name: "Dr. Elif Şahin", Color: "#10B981"}, nil)
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *scheduling.MockRepository) {
				lookups(m)
				m.EXPECT().CreateAppointment(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "UnknownClient",
			params: valid,
			setupMock: func(m *scheduling.MockRepository) {
				m.EXPECT().GetClient(gomock.Any(), clientID).Return(nil, scheduling.ErrNotFound)
			},
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:   "UnknownPsychologist",
			params: valid,
			setupMock: func(m *scheduling.MockRepository) {
				m.EXPECT().GetClient(gomock.Any(), clientID).Return(&scheduling.Client{ID: clientID}, nil)
				m.EXPECT().GetPsychologist(gomock.Any(), psyID).Return(nil, scheduling.ErrNotFound)
			},
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "HourOutOfRange",
			params:  func() scheduling.AppointmentParams { p := valid; p.Hour = 24; return p }(),
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "MinuteOutOfRange",
			params:  func() scheduling.AppointmentParams { p := valid; p.Minute = 60; return p }(),
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "ZeroDuration",
			params:  func() scheduling.AppointmentParams { p := valid; p.Duration = 0; return p }(),
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "NegativeFee",
			params:  func() scheduling.AppointmentParams { p := valid; p.Fee = -1; return p }(),
			wantErr: scheduling.ErrInvalid,
		},
		{
			name:    "UnknownStatus",
			params:  func() scheduling.AppointmentParams { p := valid; p.Status = "moved"; return p }(),
			wantErr: scheduling.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := scheduling.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := scheduling.NewService(repo, scheduling.WithLocation(time.UTC)).
				CreateAppointment(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, scheduling.StatusScheduled, got.Status)
			assert.Equal(t, "Ayşe Yılmaz", got.ClientName)
			assert.Equal(t, "Dr. Elif Şahin", got.PsychologistName)
			assert.Equal(t, "#10B981", got.PsychologistColor)
			assert.Equal(t, time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC), got.Start(time.UTC))
			assert.Equal(t, time.Date(2024, 7, 15, 10, 50, 0, 0, time.UTC), got.End(time.UTC))
		})
	}
}

type appt struct {
	client string
	day    int
	month  int
	hour   int
	fee    int64
	status scheduling.Status
}

func appointments(loc *time.Location, clients map[string]uuid.UUID, specs ...appt) []*scheduling.Appointment {
	out := make([]*scheduling.Appointment, 0, len(specs))

	for _, s := range specs {
		if _, ok := clients[s.client]; !ok {
			clients[s.client] = uuid.New()
		}

		status := s.status
		if status == "" {
			status = scheduling.StatusScheduled
		}

		out = append(out, &scheduling.Appointment{
			ID:               uuid.New(),
			ClientID:         clients[s.client],
			ClientName:       s.client,
			PsychologistName: "Dr. Elif Şahin",
			Date:             time.Date(2024, time.Month(s.month), s.day, 0, 0, 0, 0, loc),
			Hour:             s.hour,
			Duration:         50,
			Fee:              s.fee,
			Status:           status,
		})
	}

	return out
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loc := time.UTC
	appts := appointments(loc, map[string]uuid.UUID{},
		appt{client: "c1", month: 7, day: 17, hour: 10, fee: 1000},
		appt{client: "c2", month: 7, day: 17, hour: 16, fee: 2000},
		appt{client: "c1", month: 7, day: 15, hour: 9, fee: 1000, status: scheduling.StatusCompleted},
		appt{client: "c3", month: 7, day: 21, hour: 11, fee: 1500},
		appt{client: "c3", month: 7, day: 22, hour: 11, fee: 1500},
		appt{client: "c4", month: 7, day: 17, hour: 12, fee: 5000, status: scheduling.StatusCancelled},
		appt{client: "c5", month: 6, day: 30, hour: 9, fee: 800},
		appt{client: "c6", month: 8, day: 1, hour: 9, fee: 900},
	)

	reader := scheduling.NewMockReader(ctrl)
	reader.EXPECT().ListAppointments(gomock.Any()).Return(appts, nil)
	reader.EXPECT().ListPsychologists(gomock.Any()).Return([]*scheduling.Psychologist{{Name: "Dr. Elif Şahin"}}, nil)

	svc := scheduling.NewService(scheduling.NewMockRepository(ctrl),
		scheduling.WithReader(reader),
		scheduling.WithLocation(loc),
	)

	// Wednesday afternoon.
	now := time.Date(2024, 7, 17, 14, 0, 0, 0, loc)
	d := svc.Dashboard(context.Background(), now)

	assert.Equal(t, 2, d.TodayCount)
	require.Len(t, d.Today, 2)
	assert.Equal(t, 10, d.Today[0].Hour)
	assert.Equal(t, 4, d.WeekCount)
	assert.Equal(t, int64(7000), d.MonthRevenue)
	assert.Equal(t, 3, d.ActiveClients)
	assert.Len(t, d.Psychologists, 1)

	require.Len(t, d.Upcoming, 4)
	assert.Equal(t, 16, d.Upcoming[0].Hour)
	assert.Equal(t, 8, int(d.Upcoming[3].Date.Month()))
}

func TestService_Dashboard_UsesPracticeDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	istanbul := time.FixedZone("TRT", 3*3600)
	appts := appointments(istanbul, map[string]uuid.UUID{},
		appt{client: "c1", month: 7, day: 18, hour: 9, fee: 1000},
	)

	reader := scheduling.NewMockReader(ctrl)
	reader.EXPECT().ListAppointments(gomock.Any()).Return(appts, nil)
	reader.EXPECT().ListPsychologists(gomock.Any()).Return(nil, nil)

	svc := scheduling.NewService(scheduling.NewMockRepository(ctrl),
		scheduling.WithReader(reader),
		scheduling.WithLocation(istanbul),
	)

	// 22:30 UTC on the 17th is already the 18th in Istanbul.
	d := svc.Dashboard(context.Background(), time.Date(2024, 7, 17, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, 1, d.TodayCount)
}

func TestService_Dashboard_ReaderFailureDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := scheduling.NewMockReader(ctrl)
	reader.EXPECT().ListAppointments(gomock.Any()).Return(nil, errors.New("connection refused"))
	reader.EXPECT().ListPsychologists(gomock.Any()).Return(nil, errors.New("connection refused"))

	svc := scheduling.NewService(scheduling.NewMockRepository(ctrl), scheduling.WithReader(reader))

	d := svc.Dashboard(context.Background(), time.Now())
	require.NotNil(t, d)
	assert.Zero(t, d.TodayCount)
	assert.Zero(t, d.WeekCount)
	assert.Zero(t, d.MonthRevenue)
	assert.Zero(t, d.ActiveClients)
	assert.Empty(t, d.Psychologists)
	assert.Empty(t, d.Upcoming)
}

func TestService_Calendar_BucketsByLocalDay(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("HST", -10*3600),
		time.FixedZone("LINT", 14*3600),
		time.FixedZone("TRT", 3*3600),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			appts := appointments(loc, map[string]uuid.UUID{},
				appt{client: "c1", month: 7, day: 15, hour: 10, fee: 750},
				appt{client: "c2", month: 7, day: 15, hour: 8, fee: 250},
				appt{client: "c3", month: 7, day: 31, hour: 23, fee: 100},
				appt{client: "c4", month: 8, day: 1, hour: 0, fee: 100},
			)

			reader := scheduling.NewMockReader(ctrl)
			reader.EXPECT().ListAppointments(gomock.Any()).Return(appts, nil)

			svc := scheduling.NewService(scheduling.NewMockRepository(ctrl),
				scheduling.WithReader(reader),
				scheduling.WithLocation(loc),
			)

			m, err := svc.Calendar(context.Background(), 2024, time.July)
			require.NoError(t, err)

			assert.Len(t, m.Days, 31)
			assert.Zero(t, m.Leading, "July 2024 starts on a Monday")

			day := m.Day(15)
			require.NotNil(t, day)
			require.Len(t, day.Appointments, 2)
			assert.Equal(t, 8, day.Appointments[0].Hour)
			assert.Equal(t, 10, day.Appointments[1].Hour)
			assert.Equal(t, 15, day.Date.Day())

			assert.Len(t, m.Day(31).Appointments, 1)
			assert.Empty(t, m.Day(14).Appointments)
			assert.Nil(t, m.Day(32))
		})
	}
}

func TestService_Calendar_Edges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := scheduling.NewMockReader(ctrl)
	reader.EXPECT().ListAppointments(gomock.Any()).Return(nil, errors.New("timeout"))

	svc := scheduling.NewService(scheduling.NewMockRepository(ctrl),
		scheduling.WithReader(reader),
		scheduling.WithLocation(time.UTC),
	)

	_, err := svc.Calendar(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, scheduling.ErrInvalid)

	// September 2024 starts on a Sunday; the failed read leaves it empty.
	m, err := svc.Calendar(context.Background(), 2024, time.September)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Leading)
	assert.Len(t, m.Days, 30)

	for _, d := range m.Days {
		assert.Empty(t, d.Appointments)
	}
}

func TestService_ListAppointments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	appts := appointments(time.UTC, map[string]uuid.UUID{},
		appt{client: "Ayşe", month: 7, day: 16, hour: 9, fee: 1000},
		appt{client: "İsmail", month: 7, day: 15, hour: 10, fee: 1000, status: scheduling.StatusCancelled},
		appt{client: "Ayşe", month: 7, day: 15, hour: 11, fee: 1000},
	)

	repo := scheduling.NewMockRepository(ctrl)
	repo.EXPECT().ListAppointments(gomock.Any()).Return(appts, nil).Times(2)

	svc := scheduling.NewService(repo, scheduling.WithLocation(time.UTC))

	got, err := svc.ListAppointments(context.Background(), pipeline.Spec{Query: "ayşe"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 15, got[0].Date.Day())

	got, err = svc.ListAppointments(context.Background(), pipeline.Spec{Type: "cancelled"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "İsmail", got[0].ClientName)
}
