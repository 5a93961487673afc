//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueTerm returns a lowercase word no other run has indexed.
func uniqueTerm() string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'a' + (r - '0')
		}
		return r
	}, fmt.Sprintf("zq%d", time.Now().UnixNano()))
}

func TestSearchRanksLocationAboveDescription(t *testing.T) {
	ctx := context.Background()
	term := uniqueTerm()

	inDesc := h.CreateTestProperty(ctx, host.ID, "Forest Retreat", "Braga", "A short drive from "+term, true)
	inCity := h.CreateTestProperty(ctx, host.ID, "City Flat", term, "Central flat", true)
	h.CreateTestProperty(ctx, host.ID, "Hidden Flat", term, "Inactive", false)

	req := h.BuildAuthRequest(http.MethodGet, url(routes.PropertiesSearch)+"?q="+strings.ToUpper(term), "", nil)
	resp := h.DoRequest(req, nil)
	defer resp.Body.Close()
	body := h.ReadBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, "Response Body: %s", body)

	var results []dtos.PropertySummary
	h.DecodeBody(resp, &results)
	require.Len(t, results, 2)
	assert.Equal(t, inCity.ID, results[0].ID)
	assert.Equal(t, inDesc.ID, results[1].ID)
	require.NotNil(t, results[0].Rank)
	require.NotNil(t, results[1].Rank)
	assert.Greater(t, *results[0].Rank, *results[1].Rank)

	t.Run("BlankQueryRejected", func(t *testing.T) {
		req := h.BuildAuthRequest(http.MethodGet, url(routes.PropertiesSearch), "", nil)
		resp := h.DoRequest(req, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDuplicateReviewRejected(t *testing.T) {
	ctx := context.Background()
	prop := h.CreateTestProperty(ctx, host.ID, "Review House", "Coimbra", "Old town house", true)
	reviewer := h.CreateTestUser(ctx, "reviewer")
	jwt := h.CreateJWT(reviewer.ID)

	post := func() *http.Response {
		body := h.MustJSON(map[string]any{
			"property_id": prop.ID.String(),
			"rating":      5,
			"comment":     "Lovely",
		})
		return h.DoRequest(h.BuildAuthRequest(http.MethodPost, url(routes.Reviews), jwt, body), nil)
	}

	first := post()
	defer first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode, "Response Body: %s", h.ReadBody(first))

	second := post()
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	req := h.BuildAuthRequest(http.MethodGet, url(routes.PropertyByID, prop.ID.String()), "", nil)
	resp := h.DoRequest(req, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail dtos.PropertyDetail
	h.DecodeBody(resp, &detail)
	assert.Equal(t, 1, detail.ReviewCount)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 5.0, *detail.AverageRating, 0.001)
}
