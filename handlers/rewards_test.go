package handlers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoCheckRewardsEndpoint(t *testing.T) {
	app, db, userID := newTestApp(t)
	grantStreak(t, db, userID, 20)

	resp, raw := doRequest(t, app, "POST", "/api/rewards/auto-check", nil)
	assert.Equal(t, 200, resp.StatusCode)
	body := mapBody(t, raw)
	assert.EqualValues(t, 4, body["rewards_unlocked"])

	// Re-running unlocks nothing new.
	_, raw = doRequest(t, app, "POST", "/api/rewards/auto-check", nil)
	body = mapBody(t, raw)
	assert.EqualValues(t, 0, body["rewards_unlocked"])

	resp, raw = doRequest(t, app, "GET", "/api/rewards/available", nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, listBody(t, raw), 4)
}

func TestCheckRewardEligibilityEndpoint(t *testing.T) {
	app, db, userID := newTestApp(t)
	grantStreak(t, db, userID, 20)

	resp, raw := doRequest(t, app, "GET", "/api/rewards/check-eligibility", nil)
	assert.Equal(t, 200, resp.StatusCode)
	body := mapBody(t, raw)

	offers, ok := body["eligible_rewards"].([]any)
	require.True(t, ok)
	assert.Len(t, offers, 2) // top discount bracket plus the groups unlock
}

func TestRedeemRewardEndpoint(t *testing.T) {
	app, db, userID := newTestApp(t)
	grantStreak(t, db, userID, 7)

	_, _ = doRequest(t, app, "POST", "/api/rewards/auto-check", nil)

	_, raw := doRequest(t, app, "GET", "/api/rewards/available", nil)
	available := listBody(t, raw)
	require.Len(t, available, 1)
	rewardID := int(available[0]["id"].(float64))

	resp, raw := doRequest(t, app, "POST",
		fmt.Sprintf("/api/rewards/%d/redeem", rewardID), nil)
	assert.Equal(t, 200, resp.StatusCode)
	body := mapBody(t, raw)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 10, body["reward_value"])
	assert.NotEmpty(t, body["code"])

	// A used reward cannot be redeemed twice.
	resp, _ = doRequest(t, app, "POST",
		fmt.Sprintf("/api/rewards/%d/redeem", rewardID), nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRedeemRewardEndpointBadID(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doRequest(t, app, "POST", "/api/rewards/abc/redeem", nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = doRequest(t, app, "POST", "/api/rewards/9999/redeem", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRewardStatisticsEndpoint(t *testing.T) {
	app, db, userID := newTestApp(t)
	grantStreak(t, db, userID, 20)

	_, _ = doRequest(t, app, "POST", "/api/rewards/auto-check", nil)

	resp, raw := doRequest(t, app, "GET", "/api/rewards/statistics", nil)
	assert.Equal(t, 200, resp.StatusCode)
	body := mapBody(t, raw)
	assert.EqualValues(t, 4, body["total_rewards"])
	assert.EqualValues(t, 0, body["used_rewards"])
	assert.EqualValues(t, 4, body["available_rewards"])
	assert.EqualValues(t, 50, body["total_discount_value"])
}
