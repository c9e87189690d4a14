package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	httpx "github.com/fjpedrosa/caetaria-sub000/internal/http"
	"github.com/fjpedrosa/caetaria-sub000/internal/http/handlers"
	"github.com/fjpedrosa/caetaria-sub000/internal/infrastructure/repositories"
	"github.com/fjpedrosa/caetaria-sub000/internal/mocks"
	"github.com/fjpedrosa/caetaria-sub000/internal/services"
)

// TestEnv wires the full HTTP surface against in-memory infrastructure.
type TestEnv struct {
	Server *httptest.Server
	DB     *gorm.DB
	Redis  *redis.Client
	SMS    *mocks.MockNotificationService
	Client *http.Client
}

// NewTestEnv boots a complete stack on SQLite and miniredis.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// A second pool connection would see its own empty in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&repositories.DBSession{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	logger := zap.NewNop()
	notificationSvc := mocks.NewMockNotificationService()

	sessionRepo := repositories.NewSessionRepository(db)
	onboardingSvc := services.NewOnboardingService(sessionRepo, logger)
	sessionSvc := services.NewSessionService(sessionRepo, logger)
	verificationSvc := services.NewVerificationService(notificationSvc, redisClient, services.VerificationConfig{
		Length:       6,
		TTL:          5 * time.Minute,
		MaxAttempts:  3,
		ResendWindow: 60 * time.Second,
	})

	sh := handlers.NewSessionHandlers(onboardingSvc, sessionSvc)
	vh := handlers.NewVerificationHandlers(verificationSvc, onboardingSvc)
	server := httptest.NewServer(httpx.BuildRouter(sh, vh))

	t.Cleanup(func() {
		server.Close()
		mr.Close()
	})

	return &TestEnv{
		Server: server,
		DB:     db,
		Redis:  redisClient,
		SMS:    notificationSvc,
		Client: server.Client(),
	}
}

// PostJSON issues a POST with a JSON body and decodes the response envelope.
func (e *TestEnv) PostJSON(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	resp, err := e.Client.Post(e.Server.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeEnvelope(t, resp)
}

// GetJSON issues a GET and decodes the response envelope.
func (e *TestEnv) GetJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := e.Client.Get(e.Server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var envelope struct {
		Data  map[string]any `json:"data"`
		Error string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data == nil {
		envelope.Data = map[string]any{"error": envelope.Error}
	}
	return envelope.Data
}
