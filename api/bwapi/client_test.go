package bwapi

import (
	"bwtoolkit/utils"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return NewClient("Tester", "s3cr3t", opts...)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGetUserRequest(t *testing.T) {
	var rawQuery, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, rawQuery = r.URL.Path, r.URL.RawQuery
		respond(200, `{
			"name": "Some One", "createdAt": "2023-02-01T10:00:00Z", "roles": ["player"],
			"biography": "hi",
			"inventory": [{"itemName": "Scrap", "moduleSlots": 0, "quality": 2, "modules": [], "quantity": 7}]
		}`)(w, r)
	})

	user, err := c.GetUser("Some One", UserBiography|UserInventory)
	if err != nil {
		t.Fatal(err)
	}

	utils.CustomLog(t, user, err)

	if path != ENDPOINT_USERS {
		t.Errorf("expected path %s, got %s", ENDPOINT_USERS, path)
	}

	expected := "apiKey=s3cr3t&authId=Tester&name=Some+One&biography&inventory"
	if rawQuery != expected {
		t.Errorf("expected query %q, got %q", expected, rawQuery)
	}

	if user.Biography == nil || *user.Biography != "hi" {
		t.Errorf("expected biography, got %v", user.Biography)
	}

	if user.Equipment != nil {
		t.Error("expected unrequested equipment to be nil")
	}

	if user.Inventory == nil || len(*user.Inventory) != 1 || (*user.Inventory)[0].Quantity != 7 {
		t.Errorf("unexpected inventory %+v", user.Inventory)
	}

	created, err := user.Created()
	if err != nil || created.Year() != 2023 {
		t.Errorf("expected 2023 creation date, got %v (%v)", created, err)
	}
}

func TestGetItemsMap(t *testing.T) {
	c := newTestClient(t, respond(200, `[
		{"name": "Knife", "type": 1, "level": 2, "worthMultiplier": 100,
		 "qualityAdjectives": ["Rusty","Worn","Plain","Fine","Masterwork"],
		 "qualityDescriptions": ["a","b","c","d","e"]},
		{"name": "Stim", "type": 3, "level": 1, "worthMultiplier": 10,
		 "consumeEffects": [{"type": 13, "min": 100, "max": 200}]}
	]`))

	items, err := c.GetItemsMap()
	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	knife := items["Knife"]
	if knife.DisplayName(0) != "Rusty Knife" || knife.Description(4) != "e" || knife.Adjective(9) != "" {
		t.Errorf("unexpected quality lookups for %+v", knife)
	}

	if len(items["Stim"].Effects()) != 1 {
		t.Errorf("expected Stim to carry one effect")
	}
}

func TestGetLeaderboardUserRequest(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		respond(200, `{"credits": [{"rank": 3, "credits": 1000, "name": "Alice", "roles": []}]}`)(w, r)
	})

	user, err := c.GetLeaderboardUser("Alice", LeaderboardCredits|LeaderboardMissionsCompleted)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(rawQuery, "&name=Alice&credits&missionsCompleted") {
		t.Errorf("unexpected query %q", rawQuery)
	}

	if user.Name != "Alice" || user.Credits == nil || user.Credits.Value != 1000 {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestGetLeaderboards(t *testing.T) {
	c := newTestClient(t, respond(200, `{"overdoses": [
		{"rank": 1, "overdoses": 30, "name": "A", "roles": []},
		{"rank": 2, "overdoses": 12, "name": "B", "roles": []}
	]}`))

	lb, err := c.GetLeaderboards(LeaderboardOverdoses)
	if err != nil {
		t.Fatal(err)
	}

	if lb.Credits != nil || lb.Overdoses == nil || len(*lb.Overdoses) != 2 {
		t.Fatalf("unexpected leaderboards %+v", lb)
	}

	if (*lb.Overdoses)[1].Value != 12 {
		t.Errorf("expected second entry value 12, got %d", (*lb.Overdoses)[1].Value)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name     string
		handler  http.HandlerFunc
		expected error
	}{
		{"not found", respond(404, `{"error":"no such user"}`), ErrNotFound},
		{"unauthorized", respond(401, `{"error":"bad key"}`), ErrUnauthorized},
		{"server error", respond(500, ``), ErrOther},
		{"teapot", respond(418, ``), ErrOther},
		{"malformed json", respond(200, `{"name": "x", "roles": [`), ErrDeserialization},
		{"wrong shape", respond(200, `{"name": 12}`), ErrDeserialization},
	}

	for _, c := range cases {
		client := newTestClient(t, c.handler)

		_, err := client.GetUser("x", 0)
		if !errors.Is(err, c.expected) {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, err)
			continue
		}

		if strings.Contains(err.Error(), "s3cr3t") {
			t.Errorf("%s: api key leaked into error: %v", c.name, err)
		}
	}
}

func TestDeserializationDetail(t *testing.T) {
	client := newTestClient(t, respond(200, `not json`))

	_, err := client.GetItems()

	var de *DeserializationError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeserializationError, got %v", err)
	}

	if de.Detail == "" || de.Err == nil {
		t.Errorf("expected parser diagnostic, got %+v", de)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.GetItems()
	if !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("expected ErrRequestTimeout, got %v", err)
	}

	if strings.Contains(err.Error(), "s3cr3t") {
		t.Errorf("api key leaked into error: %v", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(respond(200, `[]`))
	base := srv.URL
	srv.Close()

	client := NewClient("Tester", "s3cr3t", WithBaseURL(base))
	if _, err := client.GetItems(); !errors.Is(err, ErrOther) {
		t.Errorf("expected ErrOther, got %v", err)
	}
}
