package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/handler"
)

// RegisterReports registers the report endpoints.  The group is expected
// to carry the token guard already; every handler reads its owner from
// the context.
func RegisterReports(g *echo.Group, r *handler.ReportHandler) {
	g.GET("/list", r.List)

	g.POST("/upload", r.Upload)
	g.PUT("/upload", r.Upload)

	g.GET("/read/:id", r.Read)
	g.PUT("/update/:id", r.Update)
	g.PUT("/update_file/:id", r.UpdateFile)
	g.GET("/download/:id", r.Download)
	g.DELETE("/delete/:id", r.Delete)
}
