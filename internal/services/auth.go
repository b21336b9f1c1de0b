package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authrepo "github.com/bovipred/bovipred-backend/internal/data/repos/auth"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	authdomain "github.com/bovipred/bovipred-backend/internal/domain/auth"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type RegisterInput struct {
	Name     string `json:"name"`
	LastName string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
	Phone    string `json:"telefono"`
}

type UpdateProfileInput struct {
	Name     *string `json:"name"`
	LastName *string `json:"apellido"`
	Phone    *string `json:"telefono"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) (string, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*types.User, int64, error)
	ToggleUser(ctx context.Context, actorID, userID uuid.UUID) (*types.User, error)
	Authenticate(ctx context.Context, token string) (*types.User, error)
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     authrepo.UserRepo
	tokens    authrepo.UserTokenRepo
	activity  ActivityLogService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	users authrepo.UserRepo,
	tokens authrepo.UserTokenRepo,
	activity ActivityLogService,
	jwtSecret string,
	tokenTTL time.Duration,
) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		users:     users,
		tokens:    tokens,
		activity:  activity,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	fields := map[string]string{}
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		fields["name"] = "requerido"
	}
	if in.LastName == "" {
		fields["apellido"] = "requerido"
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		fields["email"] = "email invalido"
	}
	if len(in.Password) < 8 {
		fields["password"] = "minimo 8 caracteres"
	}
	if in.Role == "" {
		in.Role = authdomain.RoleAssistant
	}
	if !authdomain.ValidRole(in.Role) {
		fields["rol"] = "rol invalido"
	}
	if len(fields) > 0 {
		return nil, "", apperr.Validation(fields)
	}

	existing, err := s.users.GetByEmail(ctx, nil, in.Email)
	if err != nil {
		return nil, "", apperr.FromDB(err)
	}
	if existing != nil {
		return nil, "", apperr.Conflict("el email ya esta registrado")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &types.User{
		ID:       uuid.New(),
		Name:     in.Name,
		LastName: in.LastName,
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
		Phone:    strings.TrimSpace(in.Phone),
		Active:   true,
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			return apperr.FromDB(err)
		}
		var issueErr error
		token, issueErr = s.issueToken(ctx, tx, user)
		return issueErr
	})
	if err != nil {
		return nil, "", err
	}

	s.activity.Record(ctx, audit.ActionRegister, "User", &user.ID, "Usuario registrado: "+user.Email)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		fields := map[string]string{}
		if email == "" {
			fields["email"] = "requerido"
		}
		if password == "" {
			fields["password"] = "requerido"
		}
		return nil, "", apperr.Validation(fields)
	}

	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, "", apperr.FromDB(err)
	}
	if user == nil {
		return nil, "", apperr.Unauthorized("credenciales invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("credenciales invalidas")
	}
	if !user.Active {
		return nil, "", apperr.Forbidden("usuario desactivado")
	}

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var issueErr error
		token, issueErr = s.issueToken(ctx, tx, user)
		if issueErr != nil {
			return issueErr
		}
		return s.users.TouchLastAccess(ctx, tx, user.ID, time.Now().UTC())
	})
	if err != nil {
		return nil, "", err
	}

	s.activity.Record(ctx, audit.ActionLogin, "User", &user.ID, "Inicio de sesion: "+user.Email)
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Unauthorized("token requerido")
	}
	if err := s.tokens.DeleteByHash(ctx, nil, hashToken(token)); err != nil {
		return apperr.FromDB(err)
	}
	if claims, err := s.parseClaims(token); err == nil {
		if id, parseErr := uuid.Parse(claims.Subject); parseErr == nil {
			s.activity.Record(ctx, audit.ActionLogout, "User", &id, "Cierre de sesion")
		}
	}
	return nil
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if user == nil {
		return nil, apperr.NotFound("usuario no encontrado")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*types.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.ValidationField("name", "requerido")
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, apperr.ValidationField("apellido", "requerido")
		}
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}

	if err := s.users.Update(ctx, nil, user); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionUpdateProfile, "User", &user.ID, "Perfil actualizado")
	return user, nil
}

// ChangePassword revokes every open session and returns a fresh token
// for the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) (string, error) {
	if len(next) < 8 {
		return "", apperr.ValidationField("password", "minimo 8 caracteres")
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return "", apperr.Unauthorized("password actual incorrecto")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.Password = string(hashed)

	var token string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.Update(ctx, tx, user); err != nil {
			return apperr.FromDB(err)
		}
		if err := s.tokens.DeleteByUser(ctx, tx, user.ID); err != nil {
			return apperr.FromDB(err)
		}
		var issueErr error
		token, issueErr = s.issueToken(ctx, tx, user)
		return issueErr
	})
	if err != nil {
		return "", err
	}

	s.activity.Record(ctx, audit.ActionChangePassword, "User", &user.ID, "Password actualizado")
	return token, nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]*types.User, int64, error) {
	rows, total, err := s.users.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *authService) ToggleUser(ctx context.Context, actorID, userID uuid.UUID) (*types.User, error) {
	if actorID == userID {
		return nil, apperr.ValidationField("user_id", "no puede desactivar su propia cuenta")
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := !user.Active
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.SetActive(ctx, tx, user.ID, next); err != nil {
			return apperr.FromDB(err)
		}
		if !next {
			// Deactivation revokes open sessions immediately.
			if err := s.tokens.DeleteByUser(ctx, tx, user.ID); err != nil {
				return apperr.FromDB(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Active = next

	s.activity.Record(ctx, audit.ActionToggleUser, "User", &user.ID, "Estado de usuario cambiado")
	return user, nil
}

// Authenticate resolves a bearer token to its user: valid signature,
// unexpired claims, a live server-side session, and an active account.
func (s *authService) Authenticate(ctx context.Context, token string) (*types.User, error) {
	claims, err := s.parseClaims(token)
	if err != nil {
		return nil, apperr.Unauthorized("token invalido")
	}

	stored, err := s.tokens.GetByHash(ctx, nil, hashToken(token))
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if stored == nil || stored.Expired() {
		return nil, apperr.Unauthorized("sesion expirada")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("token invalido")
	}
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if user == nil || !user.Active {
		return nil, apperr.Unauthorized("usuario no disponible")
	}
	return user, nil
}

type tokenClaims struct {
	Role string `json:"rol"`
	jwt.RegisteredClaims
}

func (s *authService) issueToken(ctx context.Context, tx *gorm.DB, user *types.User) (string, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	row := &types.UserToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, tx, row); err != nil {
		return "", apperr.FromDB(err)
	}
	return token, nil
}

func (s *authService) parseClaims(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
