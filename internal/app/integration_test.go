//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"luna.app/internal/config"
	"luna.app/internal/core/notification"
	"luna.app/internal/testutil"
)

// IntegrationTestSuite runs the full application against PostgreSQL taken
// from the DB_* environment, with Redis, FCM and its token endpoint replaced
// by local fakes.
type IntegrationTestSuite struct {
	suite.Suite
	application *Application
	db          *gorm.DB
	router      *gin.Engine
	redis       *miniredis.Miniredis
	fcm         *httptest.Server
	pushes      atomic.Int32
}

func (s *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.redis = miniredis.RunT(s.T())
	s.fcm = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer ya29.minted-1" {
			s.pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))

	s.T().Setenv("QUEUE_TYPE", "redis")
	s.T().Setenv("CACHE_TYPE", "redis")
	s.T().Setenv("REDIS_ADDR", s.redis.Addr())
	s.T().Setenv("PUSH_FCM_ENDPOINT", s.fcm.URL)
	s.T().Setenv("PUSH_FCM_CREDENTIALS_FILE", testutil.NewFCMCredentials(s.T(), "luna-integration", 3600).Path)
	s.T().Setenv("LOG_LEVEL", "error")

	cfg, err := config.LoadConfig()
	s.Require().NoError(err)

	var db *gorm.DB
	s.Require().Eventually(func() bool {
		db, err = gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
		return err == nil
	}, 20*time.Second, 2*time.Second)
	s.db = db

	container, err := NewDependencyContainerWithDB(cfg, db)
	s.Require().NoError(err)

	s.application, err = NewApplicationWithDependencies(cfg, container)
	s.Require().NoError(err)
	s.router = s.application.GetRouter()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.db.Exec(
		"TRUNCATE users, cycles, phases, period_days, irregularities, notifications RESTART IDENTITY CASCADE").Error)
	s.redis.FlushAll()
	s.pushes.Store(0)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.fcm.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.application.Shutdown(ctx))
}

func (s *IntegrationTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *IntegrationTestSuite) TestCycleWorkflow() {
	w := s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"name":      "Asha",
		"email":     "asha@example.com",
		"fcm_token": "device-token-0001",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	today := time.Now().UTC()
	for _, offset := range []int{-40, -12} {
		start := today.AddDate(0, 0, offset).Format("2006-01-02")
		w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/cycles", created.ID), map[string]string{"start_date": start})
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/cycles", created.ID), nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/notifications/check", created.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var report notification.Report
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &report))
	s.NotEmpty(report.Notifications)
	s.Positive(s.pushes.Load())

	pending, err := s.application.Ports().EmailQueue.Len(context.Background())
	s.Require().NoError(err)
	s.GreaterOrEqual(pending, int64(1))
}

func (s *IntegrationTestSuite) TestDailyCheck() {
	w := s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"name":      "Mira",
		"email":     "mira@example.com",
		"fcm_token": "device-token-0002",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/notifications/daily-check", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var summary notification.DailySummary
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &summary))
	s.Equal(1, summary.Users)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
