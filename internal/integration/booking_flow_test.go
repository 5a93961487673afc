//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkAvailability(t *testing.T, propertyID, start, end string) (int, dtos.AvailabilityResponse) {
	req := h.BuildAuthRequest(http.MethodGet,
		url(routes.PropertyCheckAvailability, propertyID)+"?start_date="+start+"&end_date="+end, "", nil)
	resp := h.DoRequest(req, nil)
	defer resp.Body.Close()

	var out dtos.AvailabilityResponse
	if resp.StatusCode == http.StatusOK {
		h.DecodeBody(resp, &out)
	}
	return resp.StatusCode, out
}

func createBooking(t *testing.T, jwt, propertyID, start, end string) *http.Response {
	body := h.MustJSON(map[string]string{
		"property_id": propertyID,
		"start_date":  start,
		"end_date":    end,
	})
	req := h.BuildAuthRequest(http.MethodPost, url(routes.Bookings), jwt, body)
	return h.DoRequest(req, nil)
}

func TestAvailabilityAndBookingFlow(t *testing.T) {
	ctx := context.Background()
	prop := h.CreateTestProperty(ctx, host.ID, "Flow Loft", "Lisbon", "Sunny loft", true)
	jwt := h.CreateJWT(guest.ID)
	pid := prop.ID.String()

	status, avail := checkAvailability(t, pid, "2030-06-01", "2030-06-05")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, avail.IsAvailable)

	resp := createBooking(t, jwt, pid, "2030-06-03", "2030-06-07")
	body := h.ReadBody(resp)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "Response Body: %s", body)

	var booking dtos.BookingResponse
	h.DecodeBody(resp, &booking)
	assert.Equal(t, 4, booking.Nights)
	assert.InDelta(t, 400.0, booking.TotalPrice, 0.001)

	status, avail = checkAvailability(t, pid, "2030-06-01", "2030-06-05")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, avail.IsAvailable)

	// Check-out day is free for the next guest.
	status, avail = checkAvailability(t, pid, "2030-06-07", "2030-06-09")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, avail.IsAvailable)

	t.Run("OverlapRejected", func(t *testing.T) {
		resp := createBooking(t, jwt, pid, "2030-06-05", "2030-06-08")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode, "Response Body: %s", h.ReadBody(resp))
	})

	t.Run("ZeroNightRejected", func(t *testing.T) {
		resp := createBooking(t, jwt, pid, "2030-07-01", "2030-07-01")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		status, _ := checkAvailability(t, pid, "2030-07-01", "2030-07-01")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("BookingVisibleOnlyToGuest", func(t *testing.T) {
		req := h.BuildAuthRequest(http.MethodGet, url(routes.BookingByID, booking.ID.String()), h.CreateJWT(host.ID), nil)
		resp := h.DoRequest(req, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("AnonymousCannotBook", func(t *testing.T) {
		resp := createBooking(t, "", pid, "2030-08-01", "2030-08-03")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	prop := h.CreateTestProperty(ctx, host.ID, "Race Cabin", "Porto", "Contested cabin", true)

	const n = 8
	jwts := make([]string, n)
	for i := range jwts {
		jwts[i] = h.CreateJWT(h.CreateTestUser(ctx, "racer").ID)
	}

	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := createBooking(t, jwts[i], prop.ID.String(), "2030-09-10", "2030-09-14")
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	assert.Equal(t, 1, created)
}

func TestInactivePropertyHidden(t *testing.T) {
	ctx := context.Background()
	prop := h.CreateTestProperty(ctx, host.ID, "Dormant Villa", "Faro", "Closed for winter", false)

	t.Run("AnonymousGets404", func(t *testing.T) {
		req := h.BuildAuthRequest(http.MethodGet, url(routes.PropertyByID, prop.ID.String()), "", nil)
		resp := h.DoRequest(req, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("OwnerSeesIt", func(t *testing.T) {
		req := h.BuildAuthRequest(http.MethodGet, url(routes.PropertyByID, prop.ID.String()), h.CreateJWT(host.ID), nil)
		resp := h.DoRequest(req, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "Response Body: %s", h.ReadBody(resp))
	})

	t.Run("NotBookable", func(t *testing.T) {
		resp := createBooking(t, h.CreateJWT(guest.ID), prop.ID.String(), "2030-01-10", "2030-01-12")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
