package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/MUKKASPANDANA/live-polling-system/internal/middleware"
	"github.com/MUKKASPANDANA/live-polling-system/internal/models"
	"github.com/MUKKASPANDANA/live-polling-system/internal/services"
	"github.com/MUKKASPANDANA/live-polling-system/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	token  string
	polls  *services.PollService
	votes  *services.VoteService
	tally  *services.TallyService
	hub    *ws.Hub
}

// setupTestServer wires the full router against an in-memory database, the
// same way cmd/server does, and registers one author.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Author{},
		&models.Poll{},
		&models.Option{},
		&models.Vote{},
	))

	hub := ws.NewHub()
	authService := services.NewAuthService(db, "test-secret")
	pollService := services.NewPollService(db)
	voteService := services.NewVoteService(db, pollService)
	tallyService := services.NewTallyService(db, pollService)

	authHandler := NewAuthHandler(authService)
	pollHandler := NewPollHandler(pollService, voteService, tallyService, hub)
	wsHandler := NewWSHandler(hub, authService, pollService, voteService, tallyService)

	router := gin.New()
	router.GET("/ws", wsHandler.HandleWebSocket)

	api := router.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	polls := api.Group("/polls")
	polls.GET("/active", pollHandler.GetActivePoll)
	polls.GET("/history", pollHandler.GetHistory)
	polls.GET("/:id/tally", pollHandler.GetTally)
	polls.GET("/:id/participants/:participantId/voted", pollHandler.HasVoted)
	polls.POST("", middleware.JWTAuth(authService), pollHandler.CreatePoll)
	polls.POST("/close", middleware.JWTAuth(authService), pollHandler.ClosePoll)

	token, err := authService.Register("author1", "password123")
	require.NoError(t, err)

	return &testServer{
		router: router,
		token:  token,
		polls:  pollService,
		votes:  voteService,
		tally:  tallyService,
		hub:    hub,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
