package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	return NewHandler(store, nil), store
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	h.GetSettings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "09:00", got.OpenTime)
	assert.Equal(t, "17:00", got.CloseTime)
	assert.Equal(t, []string{"Sunday"}, got.DisabledWeekdays)
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	h, store := newTestHandler(t)

	update := DefaultSettings()
	update.DisabledWeekdays = []string{"Saturday", "Sunday"}
	update.SlotMinutes = 15
	body, _ := json.Marshal(update)

	req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Saturday", "Sunday"}, saved.DisabledWeekdays)
	assert.Equal(t, 15, saved.SlotMinutes)
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	h, _ := newTestHandler(t)

	update := DefaultSettings()
	update.OpenTime = "18:00"
	body, _ := json.Marshal(update)

	req := httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/settings", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	h.UpdateSettings(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
