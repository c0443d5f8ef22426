package gallery

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gallery/logger"
)

var adminMessages = map[string]string{
	"uploaded":  "Image uploaded.",
	"deleted":   "Image deleted.",
	"rescanned": "Library rescanned.",
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(AdminLoginPage{Site: a.siteInfo(), CSRFToken: CsrfToken(c)}))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	logger.For(c.Request().Context(), a.Log).WithField("ip", ip).Warn("admin login failed")
	return Render(c, a.Views.AdminLogin(AdminLoginPage{Site: a.siteInfo(), ShowError: true, CSRFToken: CsrfToken(c)}))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminRescan(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if _, err := a.Reload(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=rescanned")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	snap := a.Library.Current()
	if m, ok := adminMessages[msg]; ok {
		msg = m
	}
	return Render(c, a.Views.AdminDashboard(AdminPage{
		Site:       a.siteInfo(),
		Images:     snap.Records,
		Generation: snap.Generation,
		LoadedAt:   snap.LoadedAt,
		Settled:    snap.Settled,
		Pending:    snap.Pending,
		Thumbs:     a.Thumbs.Len(),
		Message:    msg,
		CSRFToken:  CsrfToken(c),
	}))
}
