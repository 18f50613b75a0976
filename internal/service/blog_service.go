package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelmandu/trm-backend/internal/domain"
	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

var (
	ErrBlogValidation = errors.New("blog validation failed")
	ErrBlogNotFound   = errors.New("blog not found")
	ErrBlogForbidden  = errors.New("not allowed to manage this blog")
)

type BlogCreateInput struct {
	Title   string
	Body    string
	Summary *string
	Image   *ImageUpload
}

type BlogUpdateInput struct {
	Title   *string
	Body    *string
	Summary *string
	Image   *ImageUpload
}

type BlogServiceConfig struct {
	Bucket            string
	ImageProcessor    media.Processor
	ImageMaxDimension int
	Logger            *log.Logger
}

type BlogService struct {
	blogs         ports.BlogRepository
	users         ports.UserRepository
	notifications ports.NotificationRepository
	storage       ports.ObjectStorage

	bucket            string
	imageProcessor    media.Processor
	imageMaxDimension int
	logger            *log.Logger
	now               func() time.Time
}

func NewBlogService(
	blogs ports.BlogRepository,
	users ports.UserRepository,
	notifications ports.NotificationRepository,
	storage ports.ObjectStorage,
	cfg BlogServiceConfig,
) *BlogService {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	return &BlogService{
		blogs:             blogs,
		users:             users,
		notifications:     notifications,
		storage:           storage,
		bucket:            strings.TrimSpace(cfg.Bucket),
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		logger:            logger,
		now:               time.Now,
	}
}

// CreateBlog stores the post as pending and alerts every admin that a post is
// waiting for moderation.
func (s *BlogService) CreateBlog(ctx context.Context, author *domain.User, input BlogCreateInput) (*domain.Blog, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrBlogValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrBlogValidation)
	}
	if input.Image == nil {
		return nil, fmt.Errorf("%w: cover image is required", ErrBlogValidation)
	}

	blogID := uuid.New()
	imageURL, err := s.uploadCover(ctx, blogID, *input.Image)
	if err != nil {
		return nil, err
	}

	created, err := s.blogs.Create(ctx, &domain.Blog{
		Title:    title,
		Body:     body,
		Summary:  normalizeString(input.Summary),
		Image:    imageURL,
		AuthorID: author.ID,
		Status:   domain.BlogStatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, created, author)
	return created, nil
}

func (s *BlogService) GetBlog(ctx context.Context, id uuid.UUID) (*domain.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) ListBlogs(ctx context.Context) ([]domain.Blog, error) {
	return s.blogs.List(ctx)
}

// UpdateBlog is author-only. Editing an approved post sends it back through
// moderation.
func (s *BlogService) UpdateBlog(ctx context.Context, id uuid.UUID, requester *domain.User, input BlogUpdateInput) (*domain.Blog, error) {
	blog, err := s.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.AuthorID != requester.ID {
		return nil, ErrBlogForbidden
	}

	fields := domain.BlogFields{
		Title:   normalizeString(input.Title),
		Body:    normalizeString(input.Body),
		Summary: normalizeString(input.Summary),
	}
	if input.Image != nil {
		imageURL, uploadErr := s.uploadCover(ctx, id, *input.Image)
		if uploadErr != nil {
			return nil, uploadErr
		}
		fields.Image = &imageURL
	}

	var status *domain.BlogStatus
	if blog.Status == domain.BlogStatusApproved {
		pending := domain.BlogStatusPending
		status = &pending
	}

	updated, err := s.blogs.Update(ctx, id, fields, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	if status != nil {
		s.notifyAdmins(ctx, updated, requester)
	}
	return updated, nil
}

func (s *BlogService) DeleteBlog(ctx context.Context, id uuid.UUID, requester *domain.User) error {
	blog, err := s.GetBlog(ctx, id)
	if err != nil {
		return err
	}
	if blog.AuthorID != requester.ID && !requester.IsAdmin() {
		return ErrBlogForbidden
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrBlogNotFound
		}
		return err
	}
	return nil
}

// ModerateBlog is the admin decision: approve or reject. The author is
// notified either way.
func (s *BlogService) ModerateBlog(ctx context.Context, id uuid.UUID, approve bool) (*domain.Blog, error) {
	status := domain.BlogStatusApproved
	if !approve {
		status = domain.BlogStatusRejected
	}

	blog, err := s.blogs.SetStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	verdict := "approved"
	if !approve {
		verdict = "rejected"
	}
	notification := domain.Notification{
		UserID:  blog.AuthorID,
		Title:   "Blog " + verdict,
		Message: fmt.Sprintf("Your blog %q has been %s.", blog.Title, verdict),
	}
	if err := s.notifications.CreateMany(ctx, []domain.Notification{notification}); err != nil {
		s.logger.Printf("notify author %s about blog %s: %v", blog.AuthorID, blog.ID, err)
	}
	return blog, nil
}

func (s *BlogService) notifyAdmins(ctx context.Context, blog *domain.Blog, author *domain.User) {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Printf("list admins for blog %s: %v", blog.ID, err)
		return
	}
	if len(admins) == 0 {
		return
	}

	authorName := author.Email
	if author.Name != nil {
		authorName = *author.Name
	}
	notifications := make([]domain.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, domain.Notification{
			UserID:  admin.ID,
			Title:   "Blog pending review",
			Message: fmt.Sprintf("%s submitted %q for review.", authorName, blog.Title),
		})
	}
	if err := s.notifications.CreateMany(ctx, notifications); err != nil {
		s.logger.Printf("notify admins about blog %s: %v", blog.ID, err)
	}
}

func (s *BlogService) uploadCover(ctx context.Context, blogID uuid.UUID, image ImageUpload) (string, error) {
	if image.Size <= 0 {
		return "", fmt.Errorf("%w: image is empty", ErrBlogValidation)
	}
	ext := safeImageExtension(image.ContentType, image.FileName)
	objectKey := fmt.Sprintf("blogs/%s/%s%s", blogID.String(), s.now().UTC().Format("20060102T150405"), ext)
	return uploadImage(ctx, s.storage, s.imageProcessor, s.bucket, objectKey, image, s.imageMaxDimension)
}
