package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questForgeAPI/middleware"
	"questForgeAPI/services"
)

func authedRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestCompleteQuest_Unauthenticated(t *testing.T) {
	h := NewQuestHandler(&services.QuestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests/abc/complete", nil)
	rr := httptest.NewRecorder()

	h.CompleteQuest(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCompleteQuest_InvalidID(t *testing.T) {
	h := NewQuestHandler(&services.QuestService{})

	req := authedRequest(http.MethodPost, "/api/v1/quests/not-a-uuid/complete", "")
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	rr := httptest.NewRecorder()

	h.CompleteQuest(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "quest id")
}

func TestCreateQuest_InvalidBody(t *testing.T) {
	h := NewQuestHandler(&services.QuestService{})

	req := authedRequest(http.MethodPost, "/api/v1/quests", "{not json")
	rr := httptest.NewRecorder()

	h.CreateQuest(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
