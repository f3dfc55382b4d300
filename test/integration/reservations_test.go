//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"rentals/pkg/model"
	"rentals/test/integration/testutil"
)

func createResource(t *testing.T, client *testutil.Client, req model.ResourceRequest) model.Resource {
	t.Helper()
	resp := client.POST(t, "/api/v1/resources", req)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var res model.Resource
	resp.Data(t, &res)
	return res
}

func hold(t *testing.T, client *testutil.Client, req model.HoldRequest, expected int) model.Hold {
	t.Helper()
	resp := client.POST(t, "/api/v1/holds", req)
	testutil.AssertStatusCode(t, resp, expected)

	var h model.Hold
	if expected == http.StatusCreated {
		resp.Data(t, &h)
	}
	return h
}

func availabilityPath(resourceID string, checkIn, checkOut time.Time) string {
	return fmt.Sprintf("/api/v1/resources/id/%s/availability?check_in=%s&check_out=%s",
		resourceID, checkIn.Format(time.RFC3339), checkOut.Format(time.RFC3339))
}

func TestResource_CreateAndGet(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	house := createResource(t, client, testutil.NewHouseBuilder().Build())

	resp := client.GET(t, "/api/v1/resources/id/"+house.ID)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var got model.Resource
	resp.Data(t, &got)
	if got.Kind != model.KindUniqueHouse || got.CleaningBuffer != 24*time.Hour {
		t.Errorf("unexpected resource: %+v", got)
	}
	if n := mongo.CountDocuments(t, testutil.ResourcesCollection, nil); n != 1 {
		t.Errorf("expected 1 resource in DB, got %d", n)
	}
}

func TestResource_CreateErrors(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	existing := createResource(t, client, testutil.NewCenterBuilder().Build())
	duplicate := testutil.NewCenterBuilder().Build()
	duplicate.ID = existing.ID

	tests := []struct {
		name     string
		req      model.ResourceRequest
		expected int
	}{
		{name: "center without inventory", req: testutil.NewCenterBuilder().WithInventory(0).Build(), expected: http.StatusUnprocessableEntity},
		{name: "negative buffer", req: testutil.NewHouseBuilder().WithBuffer("-1h").Build(), expected: http.StatusUnprocessableEntity},
		{name: "duplicate id", req: duplicate, expected: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := client.POST(t, "/api/v1/resources", tt.req)
			testutil.AssertStatusCode(t, resp, tt.expected)
		})
	}
}

func TestReservation_HouseLifecycle(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	house := createResource(t, client, testutil.NewHouseBuilder().Build())
	checkIn, checkOut := testutil.Stay(0, 3)

	resp := client.GET(t, availabilityPath(house.ID, checkIn, checkOut))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"available":true`)

	h := hold(t, client, testutil.HoldRequest(house.ID, "guest-1", checkIn, checkOut), http.StatusCreated)
	if h.Token == "" || h.State != "LOCKED" {
		t.Fatalf("unexpected hold: %+v", h)
	}

	resp = client.POST(t, "/api/v1/holds", testutil.HoldRequest(house.ID, "guest-2", checkIn, checkOut))
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	if code := testutil.ErrorCode(t, resp); code != "LOCK_CONFLICT" {
		t.Errorf("expected LOCK_CONFLICT, got %s", code)
	}

	resp = client.POST(t, "/api/v1/holds/"+h.Token+"/commit", testutil.ValidCommit())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var reservation model.Reservation
	resp.Data(t, &reservation)
	if reservation.Status != model.StatusConfirmed {
		t.Fatalf("expected confirmed reservation, got %s", reservation.Status)
	}

	// Next stay starts inside the cleaning buffer.
	nextIn, nextOut := checkOut.Add(6*time.Hour), checkOut.Add(72*time.Hour)
	resp = client.POST(t, "/api/v1/holds", testutil.HoldRequest(house.ID, "guest-3", nextIn, nextOut))
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	if code := testutil.ErrorCode(t, resp); code != "RESOURCE_UNAVAILABLE" {
		t.Errorf("expected RESOURCE_UNAVAILABLE, got %s", code)
	}

	resp = client.POST(t, "/api/v1/reservations/id/"+reservation.ID+"/cancel", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"status":"cancelled"`)

	hold(t, client, testutil.HoldRequest(house.ID, "guest-3", nextIn, nextOut), http.StatusCreated)
}

func TestReservation_ReleasedHoldCannotCommit(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	house := createResource(t, client, testutil.NewHouseBuilder().Build())
	checkIn, checkOut := testutil.Stay(10, 2)

	h := hold(t, client, testutil.HoldRequest(house.ID, "guest-1", checkIn, checkOut), http.StatusCreated)

	resp := client.DELETE(t, "/api/v1/holds/"+h.Token)
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = client.POST(t, "/api/v1/holds/"+h.Token+"/commit", testutil.ValidCommit())
	testutil.AssertStatusCode(t, resp, http.StatusGone)

	if n := mongo.CountDocuments(t, testutil.ReservationsCollection, nil); n != 0 {
		t.Errorf("expected no reservations, got %d", n)
	}
}

func TestReservation_CenterInventory(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	center := createResource(t, client, testutil.NewCenterBuilder().WithInventory(1).Build())
	checkIn, checkOut := testutil.Stay(20, 3)

	h := hold(t, client, testutil.HoldRequest(center.ID, "guest-1", checkIn, checkOut), http.StatusCreated)
	resp := client.POST(t, "/api/v1/holds/"+h.Token+"/commit", testutil.ValidCommit())
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	overlapIn, overlapOut := testutil.Stay(21, 1)
	resp = client.POST(t, "/api/v1/holds", testutil.HoldRequest(center.ID, "guest-2", overlapIn, overlapOut))
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	resp = client.POST(t, "/api/v1/availability/search", model.AvailabilitySearch{
		ResourceIDs: []string{center.ID, "missing-resource"},
		CheckIn:     overlapIn,
		CheckOut:    overlapOut,
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var search struct {
		Available map[string]bool `json:"available"`
	}
	resp.Data(t, &search)
	if search.Available[center.ID] || search.Available["missing-resource"] {
		t.Errorf("expected nothing available, got %v", search.Available)
	}
}
