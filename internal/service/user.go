package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/event"
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/internal/storage"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// FileUpload carries one uploaded file through the service layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UserService implements the business logic for account and session
// operations.
type UserService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	storage    storage.Storage
	producer   *event.Producer
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		storage:    store,
		producer:   producer,
		logger:     logger,
	}
}

// --- Input types ---

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// LoginInput holds the parameters for user login. Identifier matches either
// username or email.
type LoginInput struct {
	Identifier string
	Password   string
}

// UpdateAccountInput holds the parameters for updating account details.
type UpdateAccountInput struct {
	FullName *string
	Email    *string
}

// --- Auth operations ---

// Register creates a new user account. The avatar is required; the cover
// image is optional. Usernames and emails are stored lowercase so the
// case-insensitive login lookup always matches.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.FullName == "" {
		return nil, apperrors.InvalidInput("full name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if input.Avatar == nil {
		return nil, apperrors.InvalidInput("avatar file is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	avatarRes, err := s.uploadImage(ctx, "avatars", input.Avatar)
	if err != nil {
		return nil, err
	}

	coverURL := ""
	var coverKey string
	if input.CoverImage != nil {
		coverRes, err := s.uploadImage(ctx, "covers", input.CoverImage)
		if err != nil {
			s.cleanupUpload(ctx, avatarRes.Key)
			return nil, err
		}
		coverURL = coverRes.URL
		coverKey = coverRes.Key
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New(),
		Username:      strings.ToLower(input.Username),
		Email:         strings.ToLower(input.Email),
		FullName:      input.FullName,
		PasswordHash:  string(hashedPassword),
		AvatarURL:     avatarRes.URL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.cleanupUpload(ctx, avatarRes.Key)
		if coverKey != "" {
			s.cleanupUpload(ctx, coverKey)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a user by username or email plus password, issues a
// token pair, and persists the hash of the refresh token as the user's
// single active session.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Identifier == "" {
		return nil, nil, apperrors.InvalidInput("username or email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, strings.ToLower(input.Identifier))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NotFound("user", input.Identifier)
		}
		return nil, nil, fmt.Errorf("get user by identifier: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid credentials")
	}

	tokens, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)

	return user, tokens, nil
}

// Logout clears the persisted refresh token hash, ending the user's session.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.SetRefreshTokenHash(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID.String()),
	)

	return nil
}

// Refresh validates a presented refresh token, cross-checks it against the
// persisted session, and rotates it for a new token pair. Every failure maps
// to 401 with a reason; a token that fails the persisted-hash comparison has
// been used or superseded and is rejected.
func (s *UserService) Refresh(ctx context.Context, presented string) (*domain.TokenPair, error) {
	if presented == "" {
		return nil, apperrors.Unauthorized("refresh token is required")
	}

	claims, err := s.jwtManager.ValidateRefreshToken(presented)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("refresh token has expired")
		}
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	presentedHash := hashToken(presented)
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != presentedHash {
		return nil, apperrors.Unauthorized("refresh token is expired or used")
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	// Compare-and-set rotation. A concurrent refresh with the same token
	// loses the race here and is rejected.
	if err := s.userRepo.RotateRefreshTokenHash(ctx, user.ID, presentedHash, hashToken(refreshToken)); err != nil {
		return nil, apperrors.Unauthorized("refresh token is expired or used")
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID.String()),
	)

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// --- Account operations ---

// CurrentUser retrieves the authenticated user's record.
func (s *UserService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and replaces it. The active
// session stays valid.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperrors.InvalidInput("new password must be different from current password")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password change: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", user.ID.String()),
	)

	return nil
}

// UpdateAccount updates the user's full name and/or email.
func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, input UpdateAccountInput) (*domain.User, error) {
	if input.FullName == nil && input.Email == nil {
		return nil, apperrors.InvalidInput("at least one of full_name or email is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, apperrors.InvalidInput("full name must not be empty")
		}
		user.FullName = *input.FullName
	}

	if input.Email != nil {
		if *input.Email == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		user.Email = strings.ToLower(*input.Email)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account updated",
		slog.String("user_id", user.ID.String()),
	)

	return user, nil
}

// UpdateAvatar uploads a replacement avatar and swaps the stored URL. The
// previous file is removed best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, file *FileUpload) (*domain.User, error) {
	return s.updateImage(ctx, userID, file, "avatars", func(u *domain.User) *string { return &u.AvatarURL })
}

// UpdateCoverImage uploads a replacement cover image and swaps the stored
// URL. The previous file is removed best-effort.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, file *FileUpload) (*domain.User, error) {
	return s.updateImage(ctx, userID, file, "covers", func(u *domain.User) *string { return &u.CoverImageURL })
}

func (s *UserService) updateImage(ctx context.Context, userID uuid.UUID, file *FileUpload, prefix string, field func(*domain.User) *string) (*domain.User, error) {
	if file == nil {
		return nil, apperrors.InvalidInput("image file is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for image update: %w", err)
	}

	res, err := s.uploadImage(ctx, prefix, file)
	if err != nil {
		return nil, err
	}

	target := field(user)
	oldURL := *target
	*target = res.URL

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.cleanupUpload(ctx, res.Key)
		return nil, fmt.Errorf("update user image: %w", err)
	}

	if key := storageKeyFromURL(oldURL); key != "" {
		s.cleanupUpload(ctx, key)
	}

	s.logger.InfoContext(ctx, "user image updated",
		slog.String("user_id", user.ID.String()),
		slog.String("kind", prefix),
	)

	return user, nil
}

// --- helpers ---

// issueSession generates a token pair and persists the refresh token hash as
// the single active session.
func (s *UserService) issueSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	hash := hashToken(refreshToken)
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return nil, fmt.Errorf("persist refresh token hash: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *UserService) uploadImage(ctx context.Context, prefix string, file *FileUpload) (*storage.UploadResult, error) {
	if !domain.IsAllowedImageContentType(file.ContentType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", file.ContentType))
	}
	if file.Size <= 0 || file.Size > domain.MaxImageFileSize {
		return nil, apperrors.InvalidInput("image file size is out of range")
	}

	key := path.Join(prefix, uuid.NewString()+extForContentType(file.ContentType))

	res, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: file.ContentType,
		Size:        file.Size,
		Data:        file.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", prefix, err)
	}

	return res, nil
}

func (s *UserService) cleanupUpload(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete uploaded file",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// hashToken returns the hex-encoded SHA-256 of the token. Only the hash is
// ever persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// storageKeyFromURL extracts the object key ("avatars/..." etc.) from a
// public media URL. Returns "" when the URL does not contain a known prefix.
func storageKeyFromURL(url string) string {
	for _, prefix := range []string{"avatars/", "covers/", "videos/", "thumbnails/"} {
		if idx := strings.Index(url, prefix); idx >= 0 {
			return url[idx:]
		}
	}
	return ""
}

// extForContentType maps a content type to a file extension for storage keys.
func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/ogg":
		return ".ogv"
	default:
		return ""
	}
}

// validatePassword enforces minimum length and a basic mix of letters and
// digits.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one letter and one digit")
	}

	return nil
}
