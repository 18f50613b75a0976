package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/travelmandu/trm-backend/internal/service"
	"github.com/travelmandu/trm-backend/internal/util"
)

type BlogHandler struct {
	blogs *service.BlogService
}

func RegisterBlogs(e *echo.Echo, auth *service.AuthService, blogs *service.BlogService) {
	handler := &BlogHandler{blogs: blogs}

	public := e.Group("/api/v1/blogs")
	public.GET("", handler.listBlogs)
	public.GET("/:id", handler.getBlog)

	protected := e.Group("/api/v1/blogs", RequireAuth(auth))
	protected.POST("", handler.createBlog)
	protected.PUT("/:id", handler.updateBlog)
	protected.DELETE("/:id", handler.deleteBlog)

	moderation := e.Group("/api/v1/blogs", RequireAuth(auth), RequireAdmin())
	moderation.POST("/:id/approve", handler.approveBlog)
	moderation.POST("/:id/reject", handler.rejectBlog)
}

func (h *BlogHandler) createBlog(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	cover, closers, err := openImageUploads(formFiles(form, "image"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()

	input := service.BlogCreateInput{
		Title: c.FormValue("title"),
		Body:  c.FormValue("body"),
	}
	if v, ok := formValue(form, "summary"); ok {
		input.Summary = &v
	}
	if len(cover) > 0 {
		input.Image = &cover[0]
	}

	blog, err := h.blogs.CreateBlog(c.Request().Context(), user, input)
	if err != nil {
		return h.writeBlogError(c, err, "unable to create blog")
	}
	return c.JSON(http.StatusCreated, util.Envelope{"blog": blog})
}

func (h *BlogHandler) getBlog(c echo.Context) error {
	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid blog id"))
	}
	blog, err := h.blogs.GetBlog(c.Request().Context(), blogID)
	if err != nil {
		return h.writeBlogError(c, err, "unable to load blog")
	}
	return c.JSON(http.StatusOK, util.Envelope{"blog": blog})
}

func (h *BlogHandler) listBlogs(c echo.Context) error {
	blogs, err := h.blogs.ListBlogs(c.Request().Context())
	if err != nil {
		return h.writeBlogError(c, err, "unable to list blogs")
	}
	return c.JSON(http.StatusOK, util.Envelope{"blogs": blogs, "count": len(blogs)})
}

func (h *BlogHandler) updateBlog(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid blog id"))
	}

	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}
	form := c.Request().MultipartForm

	input := service.BlogUpdateInput{}
	if v, ok := formValue(form, "title"); ok {
		input.Title = &v
	}
	if v, ok := formValue(form, "body"); ok {
		input.Body = &v
	}
	if v, ok := formValue(form, "summary"); ok {
		input.Summary = &v
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

	blog, err := h.blogs.UpdateBlog(c.Request().Context(), blogID, user, input)
	if err != nil {
		return h.writeBlogError(c, err, "unable to update blog")
	}
	return c.JSON(http.StatusOK, util.Envelope{"blog": blog})
}

func (h *BlogHandler) deleteBlog(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid blog id"))
	}
	if err := h.blogs.DeleteBlog(c.Request().Context(), blogID, user); err != nil {
		return h.writeBlogError(c, err, "unable to delete blog")
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *BlogHandler) approveBlog(c echo.Context) error {
	return h.moderate(c, true, "Blog approved")
}

func (h *BlogHandler) rejectBlog(c echo.Context) error {
	return h.moderate(c, false, "Blog rejected")
}

func (h *BlogHandler) moderate(c echo.Context, approve bool, message string) error {
	blogID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid blog id"))
	}
	blog, err := h.blogs.ModerateBlog(c.Request().Context(), blogID, approve)
	if err != nil {
		return h.writeBlogError(c, err, "unable to moderate blog")
	}
	return c.JSON(http.StatusOK, util.Envelope{"blog": blog, "message": message})
}

func (h *BlogHandler) writeBlogError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrBlogNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrBlogForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrBlogValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}
