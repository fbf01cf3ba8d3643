package bootstrap

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/shnkreddy98/airfold-backend/internal/api/http"
	"github.com/shnkreddy98/airfold-backend/internal/api/http/middleware"
	featurehttp "github.com/shnkreddy98/airfold-backend/internal/feature_execution/http"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/service"
	projecthttp "github.com/shnkreddy98/airfold-backend/internal/projects/http"
	projectsvc "github.com/shnkreddy98/airfold-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins string
	Coordinator *service.Coordinator
	Directory   *projectsvc.Directory
	Fallback    httpapi.Pinger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = strings.Split(dep.CORSOrigins, ",")
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Fallback)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	// The directory and the per-project workflow share the /projects group.
	projectsGroup := api.Group("/projects")
	projecthttp.New(dep.Directory).Register(projectsGroup)
	featurehttp.New(dep.Coordinator).Register(projectsGroup)

	return r
}
