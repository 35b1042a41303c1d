package web

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhashmi/portfolio/internal/analytics"
)

const (
	adminCookie = "admin_token"
	adminPath   = "/admin"
)

// setupAdminRoutes registers the privacy page and, when analytics is on,
// the admin login and dashboard.
func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy", gin.H{
			"Site":      s.site,
			"Analytics": s.store != nil,
			"Retention": fmt.Sprintf("%d days", int(analytics.Retention.Hours()/24)),
		})
	})

	if s.store == nil {
		return
	}

	s.adminToken = analytics.NewToken()
	s.adminUser, s.adminPass = s.cfg.AdminUsername, s.cfg.AdminPassword
	if s.adminUser == "" || s.adminPass == "" {
		if gin.Mode() != gin.DebugMode {
			s.log.Warn("admin disabled: admin_username and admin_password are not set")
			return
		}
		s.adminUser, s.adminPass = "admin", "admin123"
		s.log.Warn("using default admin credentials, set PORTFOLIO_ADMIN_USERNAME and PORTFOLIO_ADMIN_PASSWORD")
	}
	s.log.Info("admin access available", zap.String("path", adminPath+"/login"))

	r.GET(adminPath+"/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login", gin.H{"Title": "Admin Login"})
	})
	r.POST(adminPath+"/login", s.login)
	r.GET(adminPath+"/logout", func(c *gin.Context) {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, "", -1, adminPath, "", false, true)
		s.log.Info("admin logout", zap.String("client", s.store.HashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, adminPath+"/login")
	})

	admin := r.Group(adminPath)
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.log.Error("loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error", gin.H{"Error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard", gin.H{"Stats": stats})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
		s.log.Info("admin stats exported", zap.String("client", s.store.HashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := s.store.Cleanup(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	})
}

func (s *Server) login(c *gin.Context) {
	user := []byte(c.PostForm("username"))
	pass := []byte(c.PostForm("password"))
	client := s.store.HashIP(c.ClientIP())

	okUser := subtle.ConstantTimeCompare(user, []byte(s.adminUser)) == 1
	okPass := subtle.ConstantTimeCompare(pass, []byte(s.adminPass)) == 1
	if !okUser || !okPass {
		s.log.Warn("failed admin login", zap.String("client", client))
		c.HTML(http.StatusUnauthorized, "admin-login", gin.H{"Title": "Admin Login", "Error": "Invalid credentials"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminCookie, s.adminToken, 3600*24, adminPath, "", c.Request.TLS != nil, true)
	s.log.Info("admin login", zap.String("client", client))
	c.Redirect(http.StatusFound, adminPath+"/dashboard")
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, adminPath+"/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
