package upload

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// 2MB
const maxUploadBytes = 2 << 20

// POST /upload accepts a single image and proxies it to the media host.
func Image(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file exceeds 2MB limit"})
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Only image files are allowed!"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer f.Close()

	url, err := host.Upload(c.Request().Context(), fh.Filename, contentType, f)
	if err != nil {
		log.Error().Err(err).Str("file", fh.Filename).Msg("media upload failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "media host unavailable"})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
