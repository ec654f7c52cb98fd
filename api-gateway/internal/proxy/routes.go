package proxy

import (
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/gin-gonic/gin"
)

type Upstreams struct {
	AuthServiceURL    string
	PatientServiceURL string
}

// Register mounts the public routes. Auth endpoints are open; everything
// under /api/patients needs a token the validator accepts.
func Register(router gin.IRouter, f *Forwarder, up Upstreams, validator middleware.TokenValidator) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", f.To(up.AuthServiceURL, Fixed("/login")))
		auth.GET("/validate", f.To(up.AuthServiceURL, Fixed("/validate")))
		auth.POST("/refresh", f.To(up.AuthServiceURL, Fixed("/refresh")))
	}

	toPatients := f.To(up.PatientServiceURL, StripPrefix("/api/patients", "/patients"))
	patients := router.Group("/api/patients", middleware.AuthMiddleware(validator))
	{
		patients.Any("", toPatients)
		patients.Any("/*path", toPatients)
	}
}
