package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   TokenVerifier
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in
// which case federated login answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth TokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration; the profile is created with the user
func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateLocalUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	} else if !isNotFound(err) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !isNotFound(err) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		Email:     req.Email,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"token": token, "user": user}})
}

// SignIn authenticates a local user by username and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"token": token}})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT. Unknown
// identities are linked to an existing account by email or get a new one.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Federated login is not configured")
	}
	ctx := c.Request().Context()

	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email address")
	}
	name, _ := token.Claims["name"].(string)

	user, err := h.resolveFirebaseUser(ctx, token.UID, email, name)
	if err != nil {
		zap.L().Error("firebase login failed", zap.String("uid", token.UID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"token": localJWT}})
}

func (h *AuthHandler) resolveFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	user, err = h.userRepository.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		return user, h.userRepository.UpdateUser(ctx, user)
	case !isNotFound(err):
		return nil, err
	}

	username, err := h.availableUsername(ctx, email, uid)
	if err != nil {
		return nil, err
	}
	user = &models.User{Username: username, FirstName: name, Email: email, FirebaseUID: &uid}
	return user, h.userRepository.CreateUser(ctx, user)
}

// availableUsername derives a username from the email local part, falling
// back to a uid-suffixed variant when it is taken.
func (h *AuthHandler) availableUsername(ctx context.Context, email, uid string) (string, error) {
	base := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	candidates := []string{base, base + "_" + uid[:min(6, len(uid))]}
	for _, candidate := range candidates {
		_, err := h.userRepository.GetUserByUsername(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("no free username for " + email)
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
