package catalog

import (
	"context"
	"io"
	"log/slog"
	"path"

	"github.com/shelfstream/shelfstream/pkg/logger"
	"github.com/shelfstream/shelfstream/pkg/notification"
)

// Notifier pushes a change event to all live connections. Delivery is
// best-effort; the service never learns about send failures.
type Notifier interface {
	Broadcast(ctx context.Context, v any)
}

// ImageStore is the slice of the file store the catalog needs for cover
// images. Satisfied by storage.Store implementations.
type ImageStore interface {
	Save(ctx context.Context, src io.Reader, sizeBytes int64, ext string) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// Service runs each catalog mutation against the repository and then
// broadcasts the matching notification. A mutation's success never
// depends on delivery.
type Service struct {
	repo     Repository
	images   ImageStore
	notifier Notifier
	log      *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithServiceLogger supplies a logger. Defaults to slog.Default().
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the repository, the image store and the notifier.
func NewService(repo Repository, images ImageStore, notifier Notifier, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		images:   images,
		notifier: notifier,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, book Book) (*Book, error) {
	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	s.notifier.Broadcast(ctx, notification.New(notification.KindCreate, created))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, book Book) (*Book, error) {
	updated, err := s.repo.Update(ctx, id, book)
	if err != nil {
		return nil, err
	}
	s.notifier.Broadcast(ctx, notification.New(notification.KindUpdate, updated))
	return updated, nil
}

// Delete removes the book and its stored cover image, if any. A missing
// image file is not an error; the book is already gone.
func (s *Service) Delete(ctx context.Context, id string) (*Book, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if deleted.Image != nil && *deleted.Image != "" {
		// The image field stores the public URL; the file store works on
		// generated names, which is the URL's last segment.
		name := path.Base(*deleted.Image)
		if _, err := s.images.Delete(ctx, name); err != nil {
			s.log.WarnContext(ctx, "failed to delete cover image",
				logger.EntityID(id), logger.FileName(name), logger.Error(err))
		}
	}

	s.notifier.Broadcast(ctx, notification.New(notification.KindDelete, deleted))
	return deleted, nil
}

// SetImage stores a new cover image for the book and persists its public
// URL, built by urlFor from the generated name. The book must exist
// before the file is written.
func (s *Service) SetImage(ctx context.Context, id string, src io.Reader, sizeBytes int64, ext string, urlFor func(name string) string) (*Book, error) {
	book, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.images.Save(ctx, src, sizeBytes, ext)
	if err != nil {
		return nil, err
	}

	url := urlFor(name)
	book.Image = &url

	updated, err := s.repo.Update(ctx, id, *book)
	if err != nil {
		// The book vanished between Get and Update; drop the orphan file.
		if _, delErr := s.images.Delete(ctx, name); delErr != nil {
			s.log.WarnContext(ctx, "failed to delete orphaned image",
				logger.FileName(name), logger.Error(delErr))
		}
		return nil, err
	}

	s.notifier.Broadcast(ctx, notification.New(notification.KindUpdate, updated))
	return updated, nil
}
