package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/showdeck/showdeck/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a test database in memory
func setupTestDB(t *testing.T) (*db.Repositories, func()) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return repos, cleanup
}

// setupScheduleRouter creates a test Gin router with schedule routes
func setupScheduleRouter(service *schedule.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	apiGroup := router.Group("/api")
	SetupScheduleRoutes(apiGroup, service)
	return router
}

// doJSON performs a request with a JSON body against the router
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func insertViaAPI(t *testing.T, router *gin.Engine, title string) models.ScheduleItem {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/schedule/items", InsertItemRequest{
		Type:  "content",
		Title: title,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var item models.ScheduleItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	return item
}

func TestScheduleAPI_InsertAndList(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	a := insertViaAPI(t, router, "Opening")
	b := insertViaAPI(t, router, "Reading")

	w := doJSON(t, router, http.MethodGet, "/api/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, a.ID, resp.Items[0].ID)
	assert.Equal(t, b.ID, resp.Items[1].ID)
}

func TestScheduleAPI_InsertValidation(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	// Missing title fails binding
	w := doJSON(t, router, http.MethodPost, "/api/schedule/items", map[string]string{"type": "content"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown type is rejected by the service
	w = doJSON(t, router, http.MethodPost, "/api/schedule/items", InsertItemRequest{
		Type:  "video",
		Title: "Nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleAPI_InsertAfterMissingAnchor(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	missing := uuid.New().String()
	w := doJSON(t, router, http.MethodPost, "/api/schedule/items", InsertItemRequest{
		Type:    "content",
		Title:   "Orphan",
		AfterID: &missing,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleAPI_Reorder(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	a := insertViaAPI(t, router, "A")
	b := insertViaAPI(t, router, "B")
	c := insertViaAPI(t, router, "C")

	w := doJSON(t, router, http.MethodPut, "/api/schedule/order", ReorderScheduleRequest{
		ItemIDs: []string{c.ID.String(), a.ID.String(), b.ID.String()},
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/schedule", nil)
	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
	assert.Equal(t, c.ID, resp.Items[0].ID)
}

func TestScheduleAPI_ReorderMismatchConflicts(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	a := insertViaAPI(t, router, "A")
	insertViaAPI(t, router, "B")

	w := doJSON(t, router, http.MethodPut, "/api/schedule/order", ReorderScheduleRequest{
		ItemIDs: []string{a.ID.String(), uuid.New().String()},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScheduleAPI_DeleteAndNotFound(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	item := insertViaAPI(t, router, "Doomed")

	path := fmt.Sprintf("/api/schedule/items/%s", item.ID)
	w := doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleAPI_InvalidUUIDParam(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	w := doJSON(t, router, http.MethodDelete, "/api/schedule/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleAPI_Slides(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()
	router := setupScheduleRouter(schedule.NewService(repos))

	item := insertViaAPI(t, router, "Song")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/schedule/items/%s/slides", item.ID), AddSlideRequest{Body: "verse"})
	require.Equal(t, http.StatusCreated, w.Code)

	var slide models.Slide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slide))
	assert.Equal(t, item.ID, slide.ItemID)
	assert.Equal(t, "verse", slide.Body)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/schedule/slides/%s", slide.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
