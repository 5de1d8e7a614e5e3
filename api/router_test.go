package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	boothapi "storeassist/api/booth"
	fittingroomapi "storeassist/api/fittingroom"
	"storeassist/api/health"
	"storeassist/api/middleware"
	notificationapi "storeassist/api/notification"
	wishlistapi "storeassist/api/wishlist"
	"storeassist/application/booth"
	"storeassist/application/fittingroom"
	"storeassist/application/notification"
	"storeassist/application/wishlist"
	"storeassist/config"
	"storeassist/domain/model"
	"storeassist/infrastructure/persistence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := persistence.NewTestDB(t)
	factory := persistence.NewFactory(db)

	cfg := &config.Config{}
	cfg.App.Env = "development"
	cfg.Server.RateLimit.Enabled = false

	router := NewRouter(cfg,
		health.NewController("test"),
		wishlistapi.NewController(wishlist.NewService(factory)),
		fittingroomapi.NewController(fittingroom.NewService(factory)),
		notificationapi.NewController(notification.NewService(factory)),
		boothapi.NewController(booth.NewService(factory)),
	)
	router.SetupRoutes()
	return router.Engine(), db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, db *gorm.DB) (*model.User, *model.Item) {
	t.Helper()
	user := &model.User{DisplayName: "Mia", Role: model.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	item := &model.Item{Name: "Trench Coat", Active: true}
	require.NoError(t, db.Create(item).Error)
	return user, item
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWishlistFlow(t *testing.T) {
	engine, db := newTestRouter(t)
	_, item := seed(t, db)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/wishlist/items", "1", gin.H{"item_id": item.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/wishlist", "1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"item_id":1`)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/wishlist/items/1", "1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/wishlist/items/1", "1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWishlistRequiresIdentity(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/wishlist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/wishlist", "zero", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWishlistEscalateEndpoint(t *testing.T) {
	engine, db := newTestRouter(t)
	_, item := seed(t, db)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/wishlist/items", "1", gin.H{"item_id": item.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/wishlist/escalate", "1",
		gin.H{"item_ids": []uint{item.ID}, "notes": "size M"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var n int64
	require.NoError(t, db.Table("fitting_room_requests").Count(&n).Error)
	assert.EqualValues(t, 1, n)

	// Nothing on the wishlist matches these ids.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/wishlist/escalate", "1",
		gin.H{"item_ids": []uint{9999}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFittingRoomRequestEndpoints(t *testing.T) {
	engine, db := newTestRouter(t)
	_, item := seed(t, db)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/fitting-room-requests", "1", gin.H{"item_id": item.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/fitting-room-requests/open", "1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(model.StatusNewRequest))

	w = doJSON(t, engine, http.MethodPut, "/api/v1/fitting-room-requests/1/status", "1",
		gin.H{"status": model.StatusCompleted, "staff_message": "Room 3"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Terminal requests reject a second transition.
	w = doJSON(t, engine, http.MethodPut, "/api/v1/fitting-room-requests/1/status", "1",
		gin.H{"status": model.StatusCancelled})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFittingRoomRequestMissingItem(t *testing.T) {
	engine, db := newTestRouter(t)
	seed(t, db)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/fitting-room-requests", "1", gin.H{"item_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	engine, db := newTestRouter(t)
	user, _ := seed(t, db)

	n := &model.Notification{
		Type:    model.NotificationSystem,
		Title:   "hello",
		Message: "hello",
		UserID:  &user.ID,
	}
	require.NoError(t, db.Create(n).Error)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/notifications?unread=true", "1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")

	w = doJSON(t, engine, http.MethodPut, "/api/v1/notifications/1/read", "1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, engine, http.MethodPut, "/api/v1/notifications/read-all", "1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNotificationRespondEndpoint(t *testing.T) {
	engine, db := newTestRouter(t)
	user, _ := seed(t, db)

	n := &model.Notification{
		Type:    model.NotificationFittingRoom,
		Title:   "New fitting room request",
		Message: "Mia requested a fitting room",
		UserID:  &user.ID,
	}
	require.NoError(t, db.Create(n).Error)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/notifications/1/response", "1",
		gin.H{"response": "On my way"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/notifications/9999/response", "1",
		gin.H{"response": "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBoothEndpoints(t *testing.T) {
	engine, db := newTestRouter(t)
	require.NoError(t, db.Create(&model.FittingRoom{RoomNumber: 3, Available: true}).Error)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/fitting-rooms/available", "1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"room_number":3`)

	until := time.Now().Add(30 * time.Minute)
	w = doJSON(t, engine, http.MethodPost, "/api/v1/fitting-rooms/3/reserve", "1",
		gin.H{"until": until})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/fitting-rooms/3/reserve", "1",
		gin.H{"until": until})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/fitting-rooms/3/release", "1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/health", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
