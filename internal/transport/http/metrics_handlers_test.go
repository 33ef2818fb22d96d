package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
)

func TestMetricsJSONEmptyDatabase(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	resp := get(t, handler, "/metrics/json")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body MetricsResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if body.Timestamp == "" {
		t.Error("expected a timestamp")
	}
	if body.SystemHealth.DatabaseStatus != "connected" {
		t.Errorf("expected database_status connected, got %q", body.SystemHealth.DatabaseStatus)
	}
	if body.SystemHealth.TotalRecords != 0 {
		t.Errorf("expected 0 total records, got %d", body.SystemHealth.TotalRecords)
	}

	stats := body.UsageStats
	if stats.TotalMessages != 0 || stats.TotalRooms != 0 || stats.TotalUsers != 0 {
		t.Errorf("expected zero totals on empty database, got %+v", stats)
	}
	if stats.AvgMessagesPerRoom != 0.0 || stats.AvgMessagesPerUser != 0.0 {
		t.Errorf("expected 0.0 averages, got %v and %v", stats.AvgMessagesPerRoom, stats.AvgMessagesPerUser)
	}
	if len(body.TopRooms) != 0 || len(body.TopUsers) != 0 {
		t.Errorf("expected empty leaderboards, got %+v and %+v", body.TopRooms, body.TopUsers)
	}
}

func TestMetricsJSONWithActivity(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	for _, m := range []struct{ room, user string }{
		{"general", "alice"},
		{"general", "alice"},
		{"general", "bob"},
		{"random", "bob"},
	} {
		resp := postForm(t, handler, stdhttp.MethodPost, "/api/chat/"+m.room, url.Values{
			"username": {m.user},
			"msg":      {"hello there"},
		})
		if resp.Code != stdhttp.StatusCreated {
			t.Fatalf("seed post failed: %d", resp.Code)
		}
	}

	resp := get(t, handler, "/metrics/json")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body MetricsResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	stats := body.UsageStats
	if stats.TotalMessages != 4 {
		t.Errorf("expected 4 total messages, got %d", stats.TotalMessages)
	}
	if stats.TotalRooms != 2 {
		t.Errorf("expected 2 rooms, got %d", stats.TotalRooms)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.MessagesToday != 4 {
		t.Errorf("expected 4 messages today, got %d", stats.MessagesToday)
	}
	if stats.ActiveUsersToday != 2 {
		t.Errorf("expected 2 active users today, got %d", stats.ActiveUsersToday)
	}
	if stats.RecentMessages7d != 4 {
		t.Errorf("expected 4 recent messages, got %d", stats.RecentMessages7d)
	}
	if stats.AvgMessagesPerRoom != 2.0 {
		t.Errorf("expected avg per room 2.0, got %v", stats.AvgMessagesPerRoom)
	}
	if stats.AvgMessagesPerUser != 2.0 {
		t.Errorf("expected avg per user 2.0, got %v", stats.AvgMessagesPerUser)
	}

	if len(body.TopRooms) != 2 || body.TopRooms[0].Room != "general" || body.TopRooms[0].MessageCount != 3 {
		t.Errorf("unexpected top rooms: %+v", body.TopRooms)
	}
	if len(body.TopUsers) != 2 {
		t.Errorf("expected 2 top users, got %+v", body.TopUsers)
	}

	if body.SystemHealth.TotalRecords != 4 {
		t.Errorf("expected 4 total records, got %d", body.SystemHealth.TotalRecords)
	}
}

func TestPrometheusExposition(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	seed := postForm(t, handler, stdhttp.MethodPost, "/api/chat/general", url.Values{
		"username": {"alice"},
		"msg":      {"hi"},
	})
	if seed.Code != stdhttp.StatusCreated {
		t.Fatalf("seed post failed: %d", seed.Code)
	}

	resp := get(t, handler, "/metrics")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := resp.Body.String()
	for _, metric := range []string{
		`chatapp_messages_total{room="general"} 1`,
		"chatapp_active_rooms 1",
		"chatapp_total_users 1",
		"chatapp_messages_today 1",
		"chatapp_message_length_chars_count 1",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("expected exposition to contain %q", metric)
		}
	}
}
