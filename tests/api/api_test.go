//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

// TestAPI_FullFlow walks the booking lifecycle end-to-end against a running
// server: plan -> subscriptions -> class -> bookings until full -> waitlist ->
// cancellation with promotion.
func TestAPI_FullFlow(t *testing.T) {
	waitForServer(t)

	var planID, classID float64
	var bookingIDs []float64

	t.Run("Step1_CreatePlan", func(t *testing.T) {
		resp := post(t, "/api/v1/plans", map[string]any{
			"name":             "Mat 10-pack",
			"class_count":      10,
			"duration_days":    30,
			"price":            "120.00",
			"equipment_access": "mat",
			"category":         "group",
		}, staffHeaders())
		require.Equal(t, 201, resp.StatusCode)

		var plan map[string]any
		decodeJSON(t, resp, &plan)
		planID = plan["id"].(float64)
	})

	t.Run("Step2_PurchaseSubscriptions", func(t *testing.T) {
		for userID := 1; userID <= 3; userID++ {
			resp := post(t, "/api/v1/subscriptions", map[string]any{
				"user_id": userID,
				"plan_id": planID,
			}, nil)
			require.Equal(t, 201, resp.StatusCode)
		}
	})

	t.Run("Step3_CreateClass", func(t *testing.T) {
		start := time.Now().Add(48 * time.Hour)
		resp := post(t, "/api/v1/classes", map[string]any{
			"name":           "Morning Mat Flow",
			"date":           start.Format("2006-01-02"),
			"time":           "09:00",
			"duration":       60,
			"capacity":       2,
			"room":           "Studio A",
			"instructor_id":  1,
			"equipment_type": "mat",
			"category":       "group",
		}, staffHeaders())
		require.Equal(t, 201, resp.StatusCode)

		var class map[string]any
		decodeJSON(t, resp, &class)
		classID = class["id"].(float64)
		assert.Equal(t, float64(2), class["capacity"])
	})

	t.Run("Step4_BookUntilFull", func(t *testing.T) {
		for userID := 1; userID <= 2; userID++ {
			resp := post(t, fmt.Sprintf("/api/v1/classes/%.0f/bookings", classID),
				map[string]any{"user_id": userID}, nil)
			require.Equal(t, 201, resp.StatusCode)

			var body map[string]any
			decodeJSON(t, resp, &body)
			assert.Equal(t, "confirmed", body["result"])
			booking := body["booking"].(map[string]any)
			bookingIDs = append(bookingIDs, booking["id"].(float64))
		}
	})

	t.Run("Step5_ThirdUserWaitlisted", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("/api/v1/classes/%.0f/bookings", classID),
			map[string]any{"user_id": 3}, nil)
		require.Equal(t, 201, resp.StatusCode)

		var body map[string]any
		decodeJSON(t, resp, &body)
		assert.Equal(t, "waitlisted", body["result"])
		assert.Equal(t, float64(1), body["position"])
	})

	t.Run("Step6_DuplicateRejected", func(t *testing.T) {
		resp := post(t, fmt.Sprintf("/api/v1/classes/%.0f/bookings", classID),
			map[string]any{"user_id": 1}, nil)
		assert.Equal(t, 409, resp.StatusCode)
	})

	t.Run("Step7_CancelPromotesWaitlist", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete,
			fmt.Sprintf("%s/api/v1/bookings/%.0f", baseURL, bookingIDs[0]), nil)
		require.NoError(t, err)
		req.Header.Set("X-User-ID", "1")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		decodeJSON(t, resp, &body)
		assert.Equal(t, true, body["waitlist_promoted"])
	})

	t.Run("Step8_WaitlistEmptyAfterPromotion", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/classes/%.0f/waitlist", baseURL, classID))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, 200, resp.StatusCode)

		var entries []map[string]any
		decodeJSON(t, resp, &entries)
		assert.Empty(t, entries)
	})
}

func waitForServer(t *testing.T) {
	t.Helper()
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			return
		}
		time.Sleep(time.Second)
	}
	t.Fatal("server not reachable at " + baseURL)
}

func staffHeaders() map[string]string {
	return map[string]string{"X-User-ID": "100", "X-User-Role": "staff"}
}

func post(t *testing.T, path string, body map[string]any, headers map[string]string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
