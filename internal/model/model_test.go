package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusToggled(t *testing.T) {
	assert.Equal(t, StatusPending, StatusCompleted.Toggled())
	assert.Equal(t, StatusCompleted, StatusPending.Toggled())
	assert.Equal(t, StatusCompleted, StatusInProgress.Toggled())
	assert.Equal(t, StatusCompleted, Status("").Toggled())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("done").Valid())
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{3, 0, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PageCount(tc.total, tc.size), "total=%d size=%d", tc.total, tc.size)
	}
	assert.True(t, PageMeta{CurrentPage: 1, PageSize: 10, TotalItems: 2, TotalPages: 1}.Consistent())
	assert.False(t, PageMeta{PageSize: 10, TotalItems: 21, TotalPages: 2}.Consistent())
}

func TestTodoPageDecodesNestedEnvelope(t *testing.T) {
	raw := `{"success":true,"data":{"data":[{"id":1,"title":"a","status":"pending"},{"id":2,"title":"b","status":"completed"}],
		"meta":{"current_page":1,"page_size":10,"total_items":2,"total_pages":1}}}`

	var env Envelope[TodoPage]
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.NotNil(t, env.Data)
	require.Len(t, env.Data.Items, 2)
	assert.Equal(t, uint(1), env.Data.Items[0].ID)
	assert.Equal(t, uint(2), env.Data.Items[1].ID)
	assert.True(t, env.Data.Items[1].Done())
	assert.True(t, env.Data.Meta.Consistent())
}

func TestStatusPatchSendsOnlyStatus(t *testing.T) {
	b, err := json.Marshal(StatusPatch(StatusCompleted))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, string(b))
}

func TestEnvelopeReason(t *testing.T) {
	assert.Equal(t, "Invalid email or password", Envelope[User]{Error: "Invalid email or password"}.Reason())
	assert.Equal(t, "Login successful", Envelope[User]{Success: true, Message: "Login successful"}.Reason())
	assert.Empty(t, Envelope[User]{}.Reason())
}
