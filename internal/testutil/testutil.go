package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vebops/store/internal/config"
	"github.com/vebops/store/internal/entity"
	"github.com/vebops/store/internal/handler"
	"github.com/vebops/store/internal/repository"
	"github.com/vebops/store/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_store"

// TestEnv holds test environment resources
type TestEnv struct {
	DB       *gorm.DB
	RDB      *redis.Client
	Repos    *repository.Repositories
	Services *service.Services
	Router   *gin.Engine
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "store")
	password := getEnv("DB_PASSWORD", "store123")
	dbname := getEnv("DB_NAME", "store")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupServer wires the full stack against an isolated schema and a local redis.
func SetupServer(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := SetupTestDB(t)

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "127.0.0.1"), getEnv("REDIS_PORT", "6379")),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{}
	cfg.Auth.Secret = "store-test-secret"
	cfg.Auth.TokenExpire = time.Hour
	cfg.Auth.Issuer = "vebops-store-test"

	repos := repository.NewRepositories(db)
	services := service.NewServices(cfg, db, rdb, repos, zap.NewNop())
	handlers := handler.NewHandlers(services, zap.NewNop())

	router := gin.New()
	router.Use(gin.Recovery())
	handlers.RegisterRoutes(router, services.Auth)

	return &TestEnv{DB: db, RDB: rdb, Repos: repos, Services: services, Router: router}
}

// SeedUser creates an account with a bcrypt-hashed password
func (e *TestEnv) SeedUser(t *testing.T, name, email, password, role, accessType string) *entity.UserAccount {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &entity.UserAccount{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AccessType:   accessType,
	}
	if err := e.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

// SeedAdmin creates and returns a ready ADMIN account
func (e *TestEnv) SeedAdmin(t *testing.T) *entity.UserAccount {
	t.Helper()
	return e.SeedUser(t, "Test Admin", "admin@test.local", "admin123", entity.RoleAdmin, entity.AccessAll)
}

// Login runs the real login flow and returns the session token
func (e *TestEnv) Login(t *testing.T, email, password string) string {
	t.Helper()
	w := DoRequest(e.Router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil || result.Token == "" {
		t.Fatalf("Login response missing token: %s", w.Body.String())
	}
	return result.Token
}

// SeedProject creates a project
func (e *TestEnv) SeedProject(t *testing.T, code, name string) *entity.Project {
	t.Helper()
	project := &entity.Project{ID: uuid.New().String(), Code: code, Name: name}
	if err := e.DB.Create(project).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	return project
}

// SeedMaterial creates a catalog material
func (e *TestEnv) SeedMaterial(t *testing.T, code, name, unit string) *entity.Material {
	t.Helper()
	material := &entity.Material{ID: uuid.New().String(), Code: code, Name: name, Unit: unit}
	if err := e.DB.Create(material).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return material
}

// SeedAllocation assigns a material requirement to a project
func (e *TestEnv) SeedAllocation(t *testing.T, projectID, materialID string, quantity float64) *entity.BomLine {
	t.Helper()
	line := &entity.BomLine{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		MaterialID: materialID,
		Quantity:   quantity,
	}
	if err := e.DB.Create(line).Error; err != nil {
		t.Fatalf("Failed to seed allocation: %v", err)
	}
	return line
}

// DoRequest executes an HTTP request against the test router.
// The token rides in the X-Auth-Token header, as the frontend sends it.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses a JSON object response body
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// ParseListResponse parses a JSON array response body
func ParseListResponse(w *httptest.ResponseRecorder) []map[string]interface{} {
	var result []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
