package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/event"
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/internal/storage"
	pkgkafka "github.com/aviral-m/Backend-Project/pkg/kafka"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *mockUserRepository) RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) error {
	args := m.Called(ctx, id, oldHash, newHash)
	return args.Error(0)
}

// --- Mock Video Repository ---

type mockVideoRepository struct {
	mock.Mock
}

func (m *mockVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *mockVideoRepository) List(ctx context.Context, params repository.ListVideosParams) ([]domain.Video, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Video), args.Int(1), args.Error(2)
}

func (m *mockVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *mockVideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Storage ---

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStorage) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// --- Mock Kafka Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, ev *pkgkafka.Event) error {
	args := m.Called(ctx, topic, ev)
	return args.Error(0)
}

// --- Fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 7*24*time.Hour)
}

func testJWTManagerWithExpiry(expiry time.Duration) *auth.JWTManager {
	return auth.NewJWTManager("access-secret-for-tests", "refresh-secret-for-tests", expiry, expiry)
}

func newTestUserService() (*UserService, *mockUserRepository, *mockStorage, *mockPublisher) {
	userRepo := new(mockUserRepository)
	store := new(mockStorage)
	pub := new(mockPublisher)
	producer := event.NewProducer(pub, testLogger())
	svc := NewUserService(userRepo, testJWTManager(), store, producer, testLogger())
	return svc, userRepo, store, pub
}

func newTestVideoService() (*VideoService, *mockVideoRepository, *mockStorage, *mockPublisher) {
	videoRepo := new(mockVideoRepository)
	store := new(mockStorage)
	pub := new(mockPublisher)
	producer := event.NewProducer(pub, testLogger())
	svc := NewVideoService(videoRepo, store, producer, testLogger())
	return svc, videoRepo, store, pub
}

func imageUpload() *FileUpload {
	return &FileUpload{
		Filename:    "pic.png",
		ContentType: "image/png",
		Size:        1024,
		Data:        strings.NewReader("png-bytes"),
	}
}

func videoUpload() *FileUpload {
	return &FileUpload{
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Size:        4096,
		Data:        strings.NewReader("mp4-bytes"),
	}
}
