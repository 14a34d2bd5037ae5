package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/matedit/internal/camera"
	"github.com/Faultbox/matedit/internal/editor"
	"github.com/Faultbox/matedit/internal/logger"
	"github.com/Faultbox/matedit/internal/store"
	"github.com/Faultbox/matedit/internal/texture"
	"github.com/Faultbox/matedit/pkg/modelfile"
)

// session is one loaded model with its editor, camera and texture service.
type session struct {
	editor   *editor.Editor
	camera   *camera.Perspective
	textures *texture.Service
	viewport editor.Viewport
	host     *host
	out      io.Writer // script output such as pick results
}

// host stands in for the render loop. It only counts redraw requests.
type host struct {
	redraws int
}

func (h *host) RequestRedraw() {
	h.redraws++
}

func newTextureService(ctx context.Context) (*texture.Service, error) {
	var catalog *texture.Catalog
	if cfg.Textures.CatalogPath != "" {
		c, err := texture.LoadCatalog(cfg.Textures.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	svc := texture.NewService(texture.Options{
		Catalog:      catalog,
		PreviewSize:  cfg.Textures.PreviewSize,
		FetchTimeout: cfg.Textures.FetchTimeout,
		MaxBytes:     cfg.Textures.MaxBytes,
		MaxPixels:    cfg.Textures.MaxPixels,
		Client:       &http.Client{Timeout: cfg.Textures.FetchTimeout},
		Logger:       logger.Named("texture"),
	})
	if cfg.Textures.Preload && catalog != nil {
		if err := svc.PreloadCatalog(ctx, 4); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// openModel loads a model file into a new editor configured from cfg.
func openModel(ctx context.Context, path string) (*session, error) {
	mode, err := editor.ParseReapplyMode(cfg.Editor.ReapplyMode)
	if err != nil {
		return nil, err
	}
	textures, err := newTextureService(ctx)
	if err != nil {
		return nil, err
	}

	root, err := modelfile.Load(path, modelfile.Options{DecodeImage: texture.DecodeFile})
	if err != nil {
		return nil, err
	}

	h := &host{}
	ed := editor.New(editor.Options{
		Logger:      logger.Named("editor"),
		Host:        h,
		Textures:    textures,
		ReapplyMode: mode,
		FitSize:     cfg.Editor.FitSize,
	})
	ed.Load(root)

	cam := camera.NewPerspective()
	cam.FovY = cfg.Camera.FovY
	cam.Near = cfg.Camera.Near
	cam.Far = cfg.Camera.Far
	if cfg.Editor.Fit {
		ed.FitModel(cam)
	}

	logger.Info("model opened",
		zap.String("path", path),
		zap.Int("meshes", ed.Registry().Len()))

	return &session{
		editor:   ed,
		camera:   cam,
		textures: textures,
		viewport: editor.Viewport{
			Width:  float32(cfg.Viewport.Width),
			Height: float32(cfg.Viewport.Height),
		},
		host: h,
		out:  os.Stdout,
	}, nil
}

func openStore() (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("no session store configured")
	}
	return store.Open(cfg.Store.Path, cfg.Store.Bucket, logger.Named("store"))
}
