package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
	"github.com/Keoroanthony/go-ecommerce-api/internal/middleware"
	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

const (
	SessionName = "gosess"

	customerIDKey = "customer_id"
	stateKey      = "oauth_state"
	customerKey   = "customer"
)

// Claims are the ID token fields copied onto the customer.
type Claims struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone_number"`
}

// Authenticator signs customers in through an OpenID Connect provider and
// keeps their id in a cookie session.
type Authenticator struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	db           *gorm.DB
	log          *logrus.Logger
}

func New(ctx context.Context, cfg config.OIDCConfig, db *gorm.DB, log *logrus.Logger) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC provider init error: %w", err)
	}

	return &Authenticator{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
		},
		db:  db,
		log: log,
	}, nil
}

// Sessions is the cookie session middleware the auth routes rely on.
func Sessions(secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return sessions.Sessions(SessionName, store)
}

func (a *Authenticator) Register(r gin.IRouter) {
	r.GET("/auth/login", a.Login)
	r.GET("/auth/callback", a.Callback)
	r.GET("/auth/me", a.RequireAuth(), a.Me)
}

// GET /auth/login
func (a *Authenticator) Login(c *gin.Context) {
	state := uuid.NewString()

	sess := sessions.Default(c)
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}

	c.Redirect(http.StatusFound, a.oauth2Config.AuthCodeURL(state))
}

// GET /auth/callback
func (a *Authenticator) Callback(c *gin.Context) {
	sess := sessions.Default(c)

	expected, _ := sess.Get(stateKey).(string)
	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	sess.Delete(stateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := a.oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}

	cust, err := a.UpsertCustomer(ctx, claims)
	if err != nil {
		middleware.Logger(c, a.log).WithError(err).Error("customer upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "customer upsert failed"})
		return
	}

	sess.Set(customerIDKey, cust.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "customer": cust})
}

// GET /auth/me
func (a *Authenticator) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentCustomer(c))
}

// UpsertCustomer finds the customer bound to the OIDC subject or creates one
// from the claims.
func (a *Authenticator) UpsertCustomer(ctx context.Context, claims Claims) (models.Customer, error) {
	var cust models.Customer
	if claims.Sub == "" {
		return cust, errors.New("id token has no subject")
	}

	err := a.db.WithContext(ctx).Where("oidc_id = ?", claims.Sub).First(&cust).Error
	if err == nil {
		return cust, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return cust, err
	}

	sub := claims.Sub
	cust = models.Customer{
		CustomerFields: models.CustomerFields{
			Name:  claims.Name,
			Email: claims.Email,
			Phone: truncate(claims.Phone, 15),
		},
		OIDCID: &sub,
	}
	if cust.Name == "" {
		cust.Name = claims.Email
	}
	return cust, a.db.WithContext(ctx).Create(&cust).Error
}

// RequireAuth ensures the session belongs to a known customer and puts it on
// the context for handlers.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		custID, ok := sess.Get(customerIDKey).(uint)
		if !ok || custID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var cust models.Customer
		if err := a.db.WithContext(c.Request.Context()).First(&cust, custID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.Set(customerKey, &cust)
		c.Next()
	}
}

// CurrentCustomer is the customer RequireAuth stored, or nil.
func CurrentCustomer(c *gin.Context) *models.Customer {
	if v, ok := c.Get(customerKey); ok {
		if cust, ok := v.(*models.Customer); ok {
			return cust
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
