package gallery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eringen/gallery/library"
)

const (
	jpegQuality   = 80
	maxUploadSize = 20 << 20 // 20MB
	// Sources at most this many pixels wide are treated as pixel art and
	// scaled without smoothing.
	pixelArtWidth = 256
)

var formatExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
	"tiff": ".tif",
}

// renderThumbnail decodes the image at path and scales it down to width.
// JPEG sources stay JPEG, everything else becomes PNG so transparency
// survives.
func renderThumbnail(path string, width int) (Thumb, error) {
	f, err := os.Open(path)
	if err != nil {
		return Thumb{}, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Thumb{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		var scaler draw.Scaler = draw.CatmullRom
		if w <= pixelArtWidth {
			scaler = draw.NearestNeighbor
		}
		scaler.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = width, newH
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "jpeg" {
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return Thumb{}, fmt.Errorf("encode thumbnail: %w", err)
	}
	return Thumb{Data: buf.Bytes(), ContentType: contentType, Width: w, Height: h}, nil
}

// mimeByExtension returns the content type of an image file name.
func mimeByExtension(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// fileFromPath returns the image file name addressed by the request path
// below prefix. The escaped path is decoded exactly once, so names holding
// percent escapes resolve to themselves.
func fileFromPath(c echo.Context, prefix string) (string, bool) {
	p := strings.TrimPrefix(c.Request().URL.EscapedPath(), prefix)
	p = strings.TrimSuffix(p, "/")
	file, err := url.PathUnescape(p)
	if err != nil || !safeFileName(file) {
		return "", false
	}
	return file, true
}

func (a *App) handleOriginal(c echo.Context) error {
	file, ok := fileFromPath(c, "/images/")
	if !ok {
		return echo.ErrNotFound
	}
	if _, found := library.IndexOf(a.Library.Current().Records, file); !found {
		return echo.ErrNotFound
	}
	c.Response().Header().Set(echo.HeaderContentType, mimeByExtension(file))
	return c.File(filepath.Join(a.Config.ImageDir, file))
}

func (a *App) handleThumb(c echo.Context) error {
	file, ok := fileFromPath(c, "/thumbs/")
	if !ok {
		return echo.ErrNotFound
	}
	if _, found := library.IndexOf(a.Library.Current().Records, file); !found {
		return echo.ErrNotFound
	}
	t, err := a.Thumbs.Get(file)
	if err != nil {
		if err == ErrNotFound {
			return echo.ErrNotFound
		}
		// Undecodable images fall back to the original bytes.
		a.Log.WithError(err).WithField("file", file).Warn("render thumbnail")
		return c.File(filepath.Join(a.Config.ImageDir, file))
	}
	if !t.ModTime.IsZero() {
		c.Response().Header().Set(echo.HeaderLastModified, t.ModTime.UTC().Format(http.TimeFormat))
	}
	return c.Blob(http.StatusOK, t.ContentType, t.Data)
}

// uniqueFileName appends a counter to name until no file in dir uses it.
func uniqueFileName(dir, name, author, ext string) string {
	candidate := library.EncodeFileName(name, author, ext)
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = library.EncodeFileName(fmt.Sprintf("%s-%d", name, counter), author, ext)
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 20MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 20MB)")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	ext, ok := formatExtensions[format]
	if !ok {
		return c.String(http.StatusBadRequest, "Unsupported image format: "+format)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		base := filepath.Base(file.Filename)
		name, _ = library.ParseFileName(base)
	}
	if name == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Name+is+required.")
	}
	author := strings.TrimSpace(c.FormValue("author"))

	filename := uniqueFileName(a.Config.ImageDir, name, author, ext)
	if err := os.WriteFile(filepath.Join(a.Config.ImageDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	a.Log.WithFields(logrus.Fields{"file": filename, "bytes": len(data)}).Info("image uploaded")

	if _, err := a.Reload(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=uploaded")
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, ok := fileFromPath(c, "/admin/images/")
	if !ok {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	if _, found := library.IndexOf(a.Library.Current().Records, file); !found {
		return c.NoContent(http.StatusNotFound)
	}

	if err := os.Remove(filepath.Join(a.Config.ImageDir, file)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	a.Thumbs.Forget(file)
	if a.Store != nil {
		if err := a.Store.DeleteDimensions(file); err != nil {
			a.Log.WithError(err).WithField("file", file).Warn("delete cached size")
		}
	}
	a.Log.WithField("file", file).Info("image deleted")

	if _, err := a.Reload(c.Request().Context()); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}
