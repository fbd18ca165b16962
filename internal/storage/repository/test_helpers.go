package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/rave-tracker/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, userUID, username, email, passwordHash, role string) {
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		userUID, username, email, passwordHash, role)
	require.NoError(t, err)
}

// CreateEvent создает тестовое мероприятие и возвращает его UID
func (f *TestDataFactory) CreateEvent(t *testing.T, title, genre, organizerUID string,
	dateStart, dateEnd time.Time, isPublic bool) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO events
		(title, description, genre, organizer_uid, date_start, date_end, location, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING uid`,
		title, "test description", genre, organizerUID, dateStart, dateEnd, "Berlin", isPublic).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateInvite создает тестовый инвайт-код
func (f *TestDataFactory) CreateInvite(t *testing.T, code string, maxUses int, expiresAt *time.Time, createdBy string) {
	_, err := f.storage.DB.Exec(`INSERT INTO invite_codes (code, max_uses, expires_at, created_by)
		VALUES ($1, $2, $3, $4)`,
		code, maxUses, expiresAt, createdBy)
	require.NoError(t, err)
}

// CreateCoupon создает тестовый купон
func (f *TestDataFactory) CreateCoupon(t *testing.T, code, couponType string, maxUses int, isActive bool) {
	_, err := f.storage.DB.Exec(`INSERT INTO coupons (code, coupon_type, max_uses, is_active)
		VALUES ($1, $2, $3, $4)`,
		code, couponType, maxUses, isActive)
	require.NoError(t, err)
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyUserExists проверяет существование пользователя в БД
func (v *TestVerification) VerifyUserExists(t *testing.T, userUID string) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM users WHERE uid = $1", userUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// VerifyEventExists проверяет существование мероприятия в БД
func (v *TestVerification) VerifyEventExists(t *testing.T, eventUID string) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM events WHERE uid = $1", eventUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// VerifyEventDeleted проверяет удаление мероприятия из БД
func (v *TestVerification) VerifyEventDeleted(t *testing.T, eventUID string) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM events WHERE uid = $1", eventUID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

// VerifyInviteUses проверяет счётчик использований инвайт-кода
func (v *TestVerification) VerifyInviteUses(t *testing.T, code string, expectedUses int) {
	var uses int
	err := v.storage.DB.QueryRow("SELECT current_uses FROM invite_codes WHERE code = $1", code).Scan(&uses)
	require.NoError(t, err)
	require.Equal(t, expectedUses, uses)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "Failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
