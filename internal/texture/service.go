package texture

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Options configures a Service.
type Options struct {
	Catalog      *Catalog
	PreviewSize  int
	FetchTimeout time.Duration
	MaxBytes     int64
	MaxPixels    int // decoded image cap; DefaultMaxPixels when zero
	Client       *http.Client
	Logger       *zap.Logger
}

// Service resolves texture sources into texture handles.
//
// Each request is independent and returns its own handle, even when concurrent requests
// for the same URL share one download and decode. Decoded preset images are cached.
type Service struct {
	opts Options
	log  *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	presets map[string]image.Image // decoded preset images keyed by URL
}

// NewService creates a texture service.
func NewService(opts Options) *Service {
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = 75
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		opts:    opts,
		log:     opts.Logger,
		presets: make(map[string]image.Image),
	}
}

// Catalog returns the preset catalog, possibly nil.
func (s *Service) Catalog() *Catalog {
	return s.opts.Catalog
}

// Resolve loads the texture described by src. Embedded sources return a preview
// handle synchronously; preset and external sources are fetched, decoded and normalized.
func (s *Service) Resolve(ctx context.Context, src Source) (*scene.Texture, error) {
	switch src.Kind {
	case Embedded:
		return s.Preview(src.Material)

	case SystemPreset:
		ref, format, name := src.Ref, src.Format, path.Base(src.Ref)
		if p, ok := s.opts.Catalog.Lookup(src.Ref); ok {
			ref, name = p.URL, p.Name
			if format == "" {
				format = p.Format
			}
		}
		img, err := s.loadCached(ctx, ref, format)
		if err != nil {
			return nil, &LoadError{Kind: src.Kind, Ref: src.Ref, Err: err}
		}
		return s.newTexture(name, format, img), nil

	case External:
		img, err := s.load(ctx, src.Ref, src.Format)
		if err != nil {
			return nil, &LoadError{Kind: src.Kind, Ref: src.Ref, Err: err}
		}
		return s.newTexture(path.Base(src.Ref), src.Format, img), nil
	}
	return nil, &LoadError{Kind: src.Kind, Ref: src.Ref, Err: fmt.Errorf("unknown source kind")}
}

// ResolveAsync starts Resolve in the background.
func (s *Service) ResolveAsync(ctx context.Context, src Source) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.tex, p.err = s.Resolve(ctx, src)
	}()
	return p
}

func (s *Service) newTexture(name, format string, img image.Image) *scene.Texture {
	tex := scene.NewTexture(name, img)
	tex.Format = format
	tex.Normalize()
	return tex
}

// load fetches and decodes a reference. Concurrent loads of one reference share the work.
// The shared fetch is bounded by FetchTimeout only; each caller stops waiting when its own
// ctx is done without failing the others.
func (s *Service) load(ctx context.Context, ref, format string) (image.Image, error) {
	ch := s.group.DoChan(format+"|"+ref, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if s.opts.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, s.opts.FetchTimeout)
			defer cancel()
		}

		start := time.Now()
		data, err := fetch(fctx, s.opts.Client, ref, s.opts.MaxBytes)
		if err != nil {
			return nil, err
		}
		img, err := decode(data, format, s.opts.MaxPixels)
		if err != nil {
			return nil, err
		}
		s.log.Debug("texture loaded",
			zap.String("ref", ref),
			zap.String("format", format),
			zap.Int("bytes", len(data)),
			zap.Duration("took", time.Since(start)))
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.log.Warn("texture load failed", zap.String("ref", ref), zap.Error(res.Err))
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func (s *Service) loadCached(ctx context.Context, ref, format string) (image.Image, error) {
	s.mu.RLock()
	img, ok := s.presets[ref]
	s.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := s.load(ctx, ref, format)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.presets[ref] = img
	s.mu.Unlock()
	return img, nil
}

// PreloadCatalog decodes every catalog preset into the cache, at most parallel at a time.
func (s *Service) PreloadCatalog(ctx context.Context, parallel int) error {
	c := s.opts.Catalog
	if c.Len() == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for _, p := range c.Presets {
		p := p
		g.Go(func() error {
			if _, err := s.loadCached(ctx, p.URL, p.Format); err != nil {
				return &LoadError{Kind: SystemPreset, Ref: p.ID, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("texture catalog preloaded", zap.Int("presets", c.Len()))
	return nil
}

// Pending is an in-flight texture resolution.
// There is no cancellation beyond the context passed to ResolveAsync; a caller can only
// ignore the result.
type Pending struct {
	done chan struct{}
	tex  *scene.Texture
	err  error
}

// Done is closed once the resolution finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the resolution finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*scene.Texture, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return p.tex, p.err
	}
}
