package http_swagger

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controller struct {
	docURL string
}

// New serves the swagger UI. docURL points the UI at the generated
// swagger.json; empty keeps the handler default.
func New(docURL string) *Controller {
	return &Controller{docURL: docURL}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	var opts []func(*ginSwagger.Config)
	if c.docURL != "" {
		opts = append(opts, ginSwagger.URL(c.docURL))
	}
	opts = append(opts, ginSwagger.DocExpansion("none"))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, opts...))
}
