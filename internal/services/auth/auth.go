// Package auth содержит логику бизнес-уровня для регистрации по инвайт-кодам,
// аутентификации и управления профилем пользователя.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/rave-tracker/internal/lib/invitecode"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/password"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBanned         = errors.New("account is banned")
	ErrInviteLimit        = errors.New("invite code limit reached")

	// Ошибки проверки инвайт-кода, порядок проверок фиксирован:
	// существование, исчерпанность, срок действия, лимит использований.
	ErrInviteInvalid      = errors.New("invalid invite code")
	ErrInviteUsed         = errors.New("invite code already used")
	ErrInviteExpired      = errors.New("invite code has expired")
	ErrInviteLimitReached = errors.New("invite code usage limit reached")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userUID string) error
	DeleteUser(ctx context.Context, userUID string) error
	AppendGeneratedInvite(ctx context.Context, userUID, code string) error
	CreateOrganizerRequest(ctx context.Context, req models.OrganizerRequest) (int, error)
}

// InviteRepository описывает контракт для работы с инвайт-кодами.
type InviteRepository interface {
	CreateInvite(ctx context.Context, invite models.InviteCode) (int, error)
	GetInviteByCode(ctx context.Context, code string) (*models.InviteCode, error)
	RedeemInvite(ctx context.Context, code, userUID string) (bool, error)
	CountGeneratedInvites(ctx context.Context, userUID string) (int, error)
}

// AuthService отвечает за регистрацию по инвайтам, авторизацию и инвайт-коды.
type AuthService struct {
	users           UserRepository
	invites         InviteRepository
	jwtMaker        jwt.Maker
	log             *slog.Logger
	maxCodesPerUser int
	defaultCodeTTL  time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, invites InviteRepository, jwtMaker jwt.Maker,
	log *slog.Logger, maxCodesPerUser int, defaultCodeTTL time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		invites:         invites,
		jwtMaker:        jwtMaker,
		log:             log,
		maxCodesPerUser: maxCodesPerUser,
		defaultCodeTTL:  defaultCodeTTL,
	}
}

// ValidateInvite проверяет инвайт-код без его расходования.
func (s *AuthService) ValidateInvite(ctx context.Context, code string) (*models.InviteCode, error) {
	invite, err := s.invites.GetInviteByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInviteInvalid
	}
	if err != nil {
		return nil, err
	}
	if invite.Used {
		return nil, ErrInviteUsed
	}
	if invite.ExpiresAt != nil && invite.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrInviteExpired
	}
	if invite.MaxUses > 0 && invite.CurrentUses >= invite.MaxUses {
		return nil, ErrInviteLimitReached
	}
	return invite, nil
}

// UseInvite атомарно расходует инвайт-код. При неудаче возвращает
// конкретную причину, перечитав состояние кода.
func (s *AuthService) UseInvite(ctx context.Context, code, userUID string) error {
	ok, err := s.invites.RedeemInvite(ctx, code, userUID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.ValidateInvite(ctx, code); err != nil {
		return err
	}
	// Код прошёл проверку после неудачного обновления: гонка с другим
	// запросом, считаем лимит исчерпанным.
	return ErrInviteLimitReached
}

// Register создает нового пользователя, предварительно проверив
// и атомарно израсходовав инвайт-код. Возвращает UID и JWT.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword, inviteCode string) (string, string, error) {
	if _, err := s.ValidateInvite(ctx, inviteCode); err != nil {
		return "", "", err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", "", err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", "", err
	}
	user := models.User{
		Email:            email,
		Username:         username,
		PasswordHash:     hashed,
		Role:             models.RoleUser, // дефолтная роль при регистрации
		SubscriptionPlan: "free",
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", "", err
	}

	// Регистрация без израсходованного инвайта недопустима: при проигрыше
	// гонки за последнее использование кода созданный пользователь удаляется.
	if err := s.UseInvite(ctx, inviteCode, uid); err != nil {
		s.log.Warn("invite redemption lost after registration",
			slog.String("code", inviteCode), slog.Any("err", err))
		if derr := s.users.DeleteUser(ctx, uid); derr != nil {
			s.log.Error("failed to roll back registration",
				slog.String("uid", uid), slog.Any("err", derr))
		}
		return "", "", err
	}

	token, err := s.jwtMaker.GenerateToken(username, models.RoleUser, uid)
	if err != nil {
		return "", "", err
	}
	s.log.Info("registered new user", slog.String("uid", uid))
	return uid, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return "", nil, ErrUserBanned
	}

	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, user.UID); err != nil {
		s.log.Warn("failed to update last login", slog.Any("err", err))
	}
	return token, user, nil
}

// Profile возвращает собственную запись пользователя.
func (s *AuthService) Profile(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUser(ctx, userUID)
}

// PublicProfile возвращает открытый профиль пользователя без чувствительных полей.
func (s *AuthService) PublicProfile(ctx context.Context, userUID string) (*models.PublicUser, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// RequestOrganizer создает заявку на роль организатора.
func (s *AuthService) RequestOrganizer(ctx context.Context, userUID, companyName, description, experience string) (int, error) {
	req := models.OrganizerRequest{
		UserUID:     userUID,
		CompanyName: companyName,
		Description: description,
		Experience:  experience,
		Status:      "pending",
	}
	return s.users.CreateOrganizerRequest(ctx, req)
}

// GenerateInvite создает одноразовый инвайт-код с учётом лимита на пользователя.
func (s *AuthService) GenerateInvite(ctx context.Context, userUID string) (*models.InviteCode, error) {
	count, err := s.invites.CountGeneratedInvites(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxCodesPerUser {
		return nil, ErrInviteLimit
	}

	code, err := invitecode.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}
	expiresAt := time.Now().UTC().Add(s.defaultCodeTTL)
	invite := models.InviteCode{
		Code:      code,
		MaxUses:   1,
		ExpiresAt: &expiresAt,
		CreatedBy: userUID,
	}
	id, err := s.invites.CreateInvite(ctx, invite)
	if err != nil {
		return nil, err
	}
	invite.ID = id

	if err := s.users.AppendGeneratedInvite(ctx, userUID, code); err != nil {
		s.log.Warn("failed to record invite on user", slog.Any("err", err))
	}
	s.log.Info("generated invite code", slog.String("created_by", userUID))
	return &invite, nil
}
