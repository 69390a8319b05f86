package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

// Cookie names shared with the browser client.
const (
	AccessTokenCookie  = "token"
	RefreshTokenCookie = "refreshToken"
)

func (s *Server) hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello from %s", s.opts.AppName)
}

func (s *Server) login(c *gin.Context) {
	var req validation.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setTokenCookie(c, AccessTokenCookie, res.AccessToken, s.opts.AccessTTL)
	s.setTokenCookie(c, RefreshTokenCookie, res.RefreshToken, s.opts.RefreshTTL)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": res.User})
}

func (s *Server) register(c *gin.Context) {
	var req validation.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": res.User})
}

func (s *Server) refreshToken(c *gin.Context) {
	// a missing cookie leaves token empty, which the service rejects
	token, _ := c.Cookie(RefreshTokenCookie)

	access, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setTokenCookie(c, AccessTokenCookie, access, s.opts.AccessTTL)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) setTokenCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(ttl/time.Second), "/", "", s.opts.SecureCookies, true)
}
