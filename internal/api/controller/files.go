package controller

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

func (c *Controller) ServeFile(ctx echo.Context) error {
	name := ctx.Param("name")

	f, err := c.files.Open(ctx.Param("area"), name)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return ctx.Stream(http.StatusOK, contentType, io.Reader(f))
}
