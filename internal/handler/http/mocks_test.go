package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/event"
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/internal/service"
	"github.com/aviral-m/Backend-Project/internal/storage/memory"
	pkgkafka "github.com/aviral-m/Backend-Project/pkg/kafka"
)

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

// noopPublisher satisfies event.Publisher without a running broker.
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, topic string, e *pkgkafka.Event) error {
	return nil
}

// --- Test helpers ---

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 240*time.Hour)
}

func handlerTestProducer() *event.Producer {
	return event.NewProducer(noopPublisher{}, handlerTestLogger())
}

func newUserServiceForHandlers(userRepo *mockUserRepository) *service.UserService {
	return service.NewUserService(
		userRepo,
		handlerTestJWTManager(),
		memory.New("https://media.test"),
		handlerTestProducer(),
		handlerTestLogger(),
	)
}

func newVideoServiceForHandlers(videoRepo *mockVideoRepository) *service.VideoService {
	return service.NewVideoService(
		videoRepo,
		memory.New("https://media.test"),
		handlerTestProducer(),
		handlerTestLogger(),
	)
}

var testUserID = uuid.MustParse("7b21b1c9-4f6e-4f0f-9a64-6fb3a1e3d111")

func sampleUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Username:     "chiwempress",
		Email:        "chiwe@example.com",
		FullName:     "Chiwe Mpress",
		PasswordHash: "$2a$04$notarealhash",
		AvatarURL:    "https://media.test/avatars/old.png",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleVideo(ownerID uuid.UUID) *domain.Video {
	now := time.Now().UTC()
	return &domain.Video{
		ID:              uuid.MustParse("0d4f7a3e-2f2a-44cd-9a14-58b7a6a1c222"),
		OwnerID:         ownerID,
		VideoURL:        "https://media.test/videos/clip.mp4",
		ThumbnailURL:    "https://media.test/thumbnails/clip.png",
		Title:           "Harbor timelapse",
		Description:     "A day at the harbor in ninety seconds",
		DurationSeconds: 90,
		Views:           12,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// authedRequest generates a valid access token for the given user and
// attaches it as a Bearer header.
func authedRequest(t *testing.T, req *http.Request, user *domain.User) *http.Request {
	t.Helper()
	token, err := handlerTestJWTManager().GenerateAccessToken(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartBody builds a multipart body from text fields and named file
// parts. Files get a content type inferred from the part name for tests.
func multipartBody(t *testing.T, fields map[string]string, files map[string]fileSpec) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}

	for name, spec := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+name+`"; filename="`+spec.filename+`"`)
		header.Set("Content-Type", spec.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part %s: %v", name, err)
		}
		if _, err := part.Write(spec.content); err != nil {
			t.Fatalf("write part %s: %v", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

// sha256Hex mirrors how refresh tokens are hashed before persistence.
func sha256Hex(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type fileSpec struct {
	filename    string
	contentType string
	content     []byte
}

func pngFile() fileSpec {
	return fileSpec{filename: "image.png", contentType: "image/png", content: []byte("png-bytes")}
}

func mp4File() fileSpec {
	return fileSpec{filename: "clip.mp4", contentType: "video/mp4", content: []byte("mp4-bytes")}
}
