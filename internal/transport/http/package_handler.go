package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type PackageHandler struct {
	packages *service.PackageService
}

func RegisterPackages(e *echo.Echo, auth *service.AuthService, packages *service.PackageService) {
	handler := &PackageHandler{packages: packages}

	public := e.Group("/api/v1/packages")
	public.GET("", handler.listPackages)
	public.GET("/:id", handler.getPackage)

	agency := e.Group("/api/v1/packages", RequireAuth(auth), RequireAgency())
	agency.POST("", handler.createPackage)
	agency.PUT("/:id", handler.updatePackage)
	agency.DELETE("/:id", handler.deletePackage)
}

func (h *PackageHandler) createPackage(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	price := 0.0
	if v := strings.TrimSpace(c.FormValue("price")); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("price must be a number"))
		}
		price = parsed
	}

	cover, closers, err := openImageUploads(formFiles(form, "image"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	input := service.PackageCreateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       price,
		Duration:    c.FormValue("duration"),
	}
	if len(cover) > 0 {
		input.Image = &cover[0]
	}

	pkg, err := h.packages.CreatePackage(c.Request().Context(), user.ID, input)
	if err != nil {
		return h.writePackageError(c, err, "unable to create package")
	}
	return c.JSON(http.StatusCreated, util.Envelope{"package": pkg})
}

func (h *PackageHandler) getPackage(c echo.Context) error {
	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid package id"))
	}
	pkg, err := h.packages.GetPackage(c.Request().Context(), packageID)
	if err != nil {
		return h.writePackageError(c, err, "unable to load package")
	}
	return c.JSON(http.StatusOK, util.Envelope{"package": pkg})
}

func (h *PackageHandler) listPackages(c echo.Context) error {
	packages, err := h.packages.ListPackages(c.Request().Context())
	if err != nil {
		return h.writePackageError(c, err, "unable to list packages")
	}
	return c.JSON(http.StatusOK, util.Envelope{"packages": packages, "count": len(packages)})
}

func (h *PackageHandler) updatePackage(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid package id"))
	}

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	input := service.PackageUpdateInput{}
	if v, ok := formValue(form, "title"); ok {
		input.Title = &v
	}
	if v, ok := formValue(form, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(form, "duration"); ok {
		input.Duration = &v
	}
	if v, ok := formValue(form, "price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("price must be a number"))
		}
		input.Price = &parsed
	}

	cover, closers, err := openImageUploads(formFiles(form, "image"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()
	if len(cover) > 0 {
		input.Image = &cover[0]
	}

	pkg, err := h.packages.UpdatePackage(c.Request().Context(), packageID, user, input)
	if err != nil {
		return h.writePackageError(c, err, "unable to update package")
	}
	return c.JSON(http.StatusOK, util.Envelope{"package": pkg})
}

func (h *PackageHandler) deletePackage(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid package id"))
	}
	if err := h.packages.DeletePackage(c.Request().Context(), packageID, user); err != nil {
		return h.writePackageError(c, err, "unable to delete package")
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *PackageHandler) writePackageError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrPackageNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrPackageForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrPackageValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}
