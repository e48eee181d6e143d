package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephencockerill/oink/internal/backup"
	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/model"
	"github.com/stephencockerill/oink/internal/reminder"
	"github.com/stephencockerill/oink/internal/store"
)

var now = time.Date(2024, time.June, 15, 19, 0, 0, 0, time.Local)

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "oink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureSettings(context.Background(), decimal.RequireFromString("5.00")))

	b := bank.New(st, bank.Options{MaxFreezes: 2, Clock: model.FixedClock(now), Logger: zerolog.Nop()})
	svc := New(Config{EventsBuffer: 10}, b, zerolog.Nop())

	id, snaps := b.Subscribe()
	done := make(chan struct{})
	go func() {
		svc.forward(snaps)
		close(done)
	}()
	t.Cleanup(func() {
		b.Unsubscribe(id)
		<-done
	})

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)
	return svc, srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, zerolog.Nop())

	s.publishEvent(Event{Type: EventSnapshot})
	s.publishEvent(Event{Type: EventSnapshot})
	s.publishEvent(Event{Type: EventReminder})

	events := s.eventsCopy()
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
	assert.Equal(t, EventReminder, events[1].Type)
}

func TestHealthz(t *testing.T) {
	_, srv := newTestService(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckinUpdatesSummary(t *testing.T) {
	_, srv := newTestService(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-06-15", body["date"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/checkins",
		`{"dates": ["2024-06-13", "2024-06-14"], "exercised": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["written"], "two new days plus today's cascade")

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "15", body["actual_balance"])
	assert.EqualValues(t, 3, body["streak"])
}

func TestValidationErrorsAre422(t *testing.T) {
	_, srv := newTestService(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"date": "2099-01-01", "exercised": true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeFutureDate, body["code"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/cashouts", `{"label": "Tea", "amount": "1.00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeInsufficientBalance, body["code"])

	resp, body = do(t, http.MethodPut, srv.URL+"/v1/settings", `{"reward_rate": "0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeInvalidRate, body["code"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/checkins", `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeInvalidBody, body["code"])
}

func TestCashOutLifecycle(t *testing.T) {
	_, srv := newTestService(t)
	do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/cashouts", `{"label": "Smoothie", "amount": "2.00"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	_, body = do(t, http.MethodGet, srv.URL+"/v1/summary", "")
	assert.Equal(t, "3", body["actual_balance"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/cashouts/"+id, `{"label": "Big smoothie", "amount": "5.00"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/v1/cashouts/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodDelete, srv.URL+"/v1/cashouts/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["code"])
}

func TestSettingsRoundTrip(t *testing.T) {
	_, srv := newTestService(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/v1/settings", `{"reward_rate": "7.50", "available_freezes": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7.5", body["reward_rate"])
	assert.EqualValues(t, 2, body["available_freezes"])
	assert.EqualValues(t, 2, body["max_freezes"])

	resp, body = do(t, http.MethodPut, srv.URL+"/v1/settings", `{"available_freezes": 3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeInvalidFreezeCount, body["code"])
}

func TestUseFreezeDefaultsToMissedDay(t *testing.T) {
	_, srv := newTestService(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/freezes/use", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeNoFreezes, body["code"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/freezes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// No body at all also means "the missed day".
	resp, body = do(t, http.MethodPost, srv.URL+"/v1/freezes/use", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-06-14", body["date"])
	assert.Equal(t, "10", body["cost"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/freezes/use", `{"date":`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, model.CodeInvalidBody, body["code"])
}

func TestReminderEndpoint(t *testing.T) {
	_, srv := newTestService(t)

	_, body := do(t, http.MethodGet, srv.URL+"/v1/reminder", "")
	assert.Equal(t, true, body["needs_reminder"])
	assert.Equal(t, "2024-06-15", body["today"])
	assert.Equal(t, "warn", body["urgency"], "graded at the bank clock's 19:00")

	do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)
	_, body = do(t, http.MethodGet, srv.URL+"/v1/reminder", "")
	assert.Equal(t, false, body["needs_reminder"])
	assert.Equal(t, "done", body["urgency"])
}

func TestMutationsBecomeEventsAndMetrics(t *testing.T) {
	svc, srv := newTestService(t)
	do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)

	require.Eventually(t, func() bool { return len(svc.eventsCopy()) > 0 }, time.Second, 10*time.Millisecond)
	ev := svc.eventsCopy()[0]
	assert.Equal(t, EventSnapshot, ev.Type)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, bank.CauseRecordOutcome, ev.Snapshot.Cause)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var found bool
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), `oink_mutations_total{cause="record_outcome"} 1`) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStreamSendsCurrentSnapshot(t *testing.T) {
	svc, srv := newTestService(t)
	_, err := svc.bank.Refresh(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: snapshot", sc.Text())
	require.True(t, sc.Scan())
	assert.True(t, strings.HasPrefix(sc.Text(), "data: "))
}

func TestExportIsReadableBackup(t *testing.T) {
	_, srv := newTestService(t)
	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/v1/export")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	res := backup.Read(resp.Body)
	require.NoError(t, res.Err)
	require.Len(t, res.Archive.Entries, 1)
	assert.True(t, res.Archive.Entries[0].Exercised)
	assert.Equal(t, "5.00", res.Archive.Settings.RewardRate.StringFixed(2))
}

func countReminders(svc *Service) int {
	n := 0
	for _, ev := range svc.eventsCopy() {
		if ev.Type == EventReminder {
			n++
		}
	}
	return n
}

func TestSendReminderNow(t *testing.T) {
	svc, srv := newTestService(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/reminder", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["needs_reminder"])
	require.Equal(t, 1, countReminders(svc))

	var sent *reminder.Reminder
	for _, ev := range svc.eventsCopy() {
		if ev.Type == EventReminder {
			sent = ev.Reminder
		}
	}
	require.NotNil(t, sent)
	assert.Equal(t, model.NewDate(2024, time.June, 15), sent.Date)
	assert.Equal(t, reminder.UrgencyWarn, sent.Urgency)

	do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)
	resp, body = do(t, http.MethodPost, srv.URL+"/v1/reminder", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["needs_reminder"])
	assert.Equal(t, 1, countReminders(svc), "nothing is sent once today is exercised")
}

func TestSnapshotEndpointAndForwardedEvents(t *testing.T) {
	svc, srv := newTestService(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/checkins", `{"exercised": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/snapshot", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-06-15", body["today"])
	assert.Equal(t, true, body["today_exercised"])

	require.Eventually(t, func() bool {
		for _, ev := range svc.eventsCopy() {
			if ev.Type == EventSnapshot && ev.Snapshot != nil && ev.Snapshot.TodayExercised {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
