package fit

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blead/canvasfit/pkg/canvas"
	"github.com/blead/canvasfit/pkg/concurrency"
	"github.com/blead/canvasfit/pkg/encoding"
	"github.com/disintegration/imaging"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// FitterConfig is the configuration for the fitter.
//
// ShrinkOnly keeps images that already fit within MaxExtent at their size.
// An empty Format keeps the format of each source.
type FitterConfig struct {
	SrcPaths    []string
	DestPath    string
	MaxExtent   int
	Concurrency int
	ShrinkOnly  bool
	Filter      imaging.ResampleFilter
	Format      string
	Quality     int
	Background  color.Color
	RetryMax    int
}

// DefaultFitterConfig generates a default configuration.
func DefaultFitterConfig() *FitterConfig {
	return &FitterConfig{
		SrcPaths:    nil,
		DestPath:    "",
		MaxExtent:   canvas.MaxExtent,
		Concurrency: 5,
		ShrinkOnly:  false,
		Filter:      imaging.Lanczos,
		Format:      "",
		Quality:     95,
		Background:  color.Transparent,
		RetryMax:    4,
	}
}

// Fitter renders images onto canvases clamped to a maximum extent.
type Fitter struct {
	config *FitterConfig
	format imaging.Format
	client *retryablehttp.Client

	mu    sync.Mutex
	dests map[string]string
}

// NewFitter creates a new fitter with the supplied configuration.
// If the configuration is nil, use DefaultFitterConfig.
func NewFitter(config *FitterConfig) (*Fitter, error) {
	def := DefaultFitterConfig()
	if def == nil {
		return nil, fmt.Errorf("NewFitter: default configuration is nil")
	}

	if config == nil {
		config = def
	}

	if config.DestPath == "" || config.DestPath == "." {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		config.DestPath = wd
	}
	config.DestPath = filepath.Clean(config.DestPath)

	if config.MaxExtent == 0 {
		config.MaxExtent = def.MaxExtent
	}
	if config.MaxExtent < 0 {
		return nil, fmt.Errorf("NewFitter: negative max extent, max=%d", config.MaxExtent)
	}
	if config.Concurrency == 0 {
		config.Concurrency = def.Concurrency
	}
	if config.Filter.Kernel == nil {
		config.Filter = def.Filter
	}
	if config.Quality == 0 {
		config.Quality = def.Quality
	}
	if config.Background == nil {
		config.Background = def.Background
	}

	format := imaging.Format(-1)
	if config.Format != "" {
		var err error
		format, err = encoding.ParseImageFormat(config.Format)
		if err != nil {
			return nil, fmt.Errorf("NewFitter: unsupported format, format=%s, %w", config.Format, err)
		}
	}

	return &Fitter{
		config: config,
		format: format,
		client: newHTTPClient(config.RetryMax),
		dests:  make(map[string]string),
	}, nil
}

// source is a file path or URL, with its destination path relative to DestPath.
type source struct {
	location string
	rel      string
	isDir    bool
	isURL    bool
}

type fitOutput struct {
	children []*source
	result   *encoding.Result
}

type fitItem = concurrency.Item[*source, *fitOutput]

func (fitter *Fitter) initialSources() ([]*source, error) {
	var sources []*source
	seen := make(map[string]string)
	add := func(src *source) error {
		if other, ok := seen[src.rel]; ok {
			return fmt.Errorf("initialSources: sources share a destination name, name=%s, src=%s, other=%s", src.rel, src.location, other)
		}
		seen[src.rel] = src.location
		sources = append(sources, src)
		return nil
	}
	for _, location := range fitter.config.SrcPaths {
		if isURL(location) {
			u, err := url.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("initialSources: invalid url, url=%s, %w", location, err)
			}
			name := path.Base(u.Path)
			if name == "/" || name == "." {
				name = u.Hostname()
			}
			if err := add(&source{location: location, rel: name, isURL: true}); err != nil {
				return nil, err
			}
			continue
		}

		location = filepath.Clean(location)
		info, err := os.Stat(location)
		if err != nil {
			return nil, fmt.Errorf("initialSources: src stat error, src=%s, %w", location, err)
		}
		err = add(&source{
			location: location,
			rel:      filepath.Base(location),
			isDir:    info.IsDir(),
		})
		if err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// listDir returns the image files and subdirectories of a directory source.
func listDir(src *source) ([]*source, error) {
	entries, err := os.ReadDir(src.location)
	if err != nil {
		return nil, fmt.Errorf("listDir: read error, src=%s, %w", src.location, err)
	}

	var children []*source
	for _, entry := range entries {
		child := &source{
			location: filepath.Join(src.location, entry.Name()),
			rel:      filepath.Join(src.rel, entry.Name()),
			isDir:    entry.IsDir(),
		}
		if !child.isDir {
			if _, err := imaging.FormatFromFilename(entry.Name()); err != nil {
				log.Printf("[DEBUG] listDir: skipping non-image file, src=%s\n", child.location)
				continue
			}
		}
		children = append(children, child)
	}
	return children, nil
}

func (fitter *Fitter) open(src *source) (io.Reader, func() error, error) {
	if src.isURL {
		r, err := fitter.download(src.location)
		return r, func() error { return nil }, err
	}

	f, err := os.Open(src.location)
	if err != nil {
		return nil, nil, fmt.Errorf("open: src open error, src=%s, %w", src.location, err)
	}
	return f, f.Close, nil
}

func (fitter *Fitter) outputFormat(src *source) imaging.Format {
	if fitter.format >= 0 {
		return fitter.format
	}
	if format, err := imaging.FormatFromFilename(src.rel); err == nil {
		return format
	}
	return imaging.PNG
}

func (fitter *Fitter) fitImage(src *source) (*encoding.Result, error) {
	r, closeSrc, err := fitter.open(src)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("fitImage: decode error, src=%s, %w", src.location, err)
	}

	bounds := img.Bounds()
	original := canvas.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}
	dims, err := canvas.ClampWithin(float64(original.Width), float64(original.Height), fitter.config.MaxExtent)
	if err != nil {
		return nil, fmt.Errorf("fitImage: src=%s, %w", src.location, err)
	}
	if fitter.config.ShrinkOnly && original.Within(fitter.config.MaxExtent) {
		dims = original
	}

	if dims.Width == 0 || dims.Height == 0 {
		return nil, fmt.Errorf("fitImage: empty canvas, src=%s, %s -> %s, %w", src.location, original, dims, canvas.ErrInvalidDimensions)
	}

	format := fitter.outputFormat(src)
	dest := filepath.Join(
		fitter.config.DestPath,
		strings.TrimSuffix(src.rel, filepath.Ext(src.rel))+encoding.FormatExt(format),
	)
	err = fitter.claimDest(dest, src.location)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	out := encoding.PaintCanvas(img, dims.Width, dims.Height, fitter.config.Filter, fitter.config.Background)
	err = encoding.Encode(&output, out, format, fitter.config.Quality)
	if err != nil {
		return nil, fmt.Errorf("fitImage: encode error, dest=%s, %w", dest, err)
	}

	err = os.MkdirAll(filepath.Dir(dest), 0777)
	if err != nil {
		return nil, fmt.Errorf("fitImage: dest mkdir error, dest=%s, %w", dest, err)
	}
	err = os.WriteFile(dest, output.Bytes(), 0666)
	if err != nil {
		return nil, fmt.Errorf("fitImage: dest write error, dest=%s, %w", dest, err)
	}

	log.Printf("[DEBUG] fitImage: src=%s, %s -> %s\n", src.location, original, dims)

	return &encoding.Result{
		Source: src.location,
		Width:  float64(original.Width),
		Height: float64(original.Height),
		Canvas: dims,
	}, nil
}

// claimDest reserves dest for src so that two sources never write the same file.
func (fitter *Fitter) claimDest(dest string, src string) error {
	fitter.mu.Lock()
	defer fitter.mu.Unlock()

	if owner, ok := fitter.dests[dest]; ok {
		return fmt.Errorf("claimDest: dest already written by another source, dest=%s, src=%s, other=%s", dest, src, owner)
	}
	fitter.dests[dest] = src
	return nil
}

// FitImages renders every source image onto a clamped canvas at DestPath.
// Directories are walked recursively. Results of the images that succeeded
// are returned sorted by source along with the aggregated errors.
func (fitter *Fitter) FitImages() ([]*encoding.Result, error) {
	log.Println("[INFO] Fitting images")

	fitter.mu.Lock()
	fitter.dests = make(map[string]string)
	fitter.mu.Unlock()

	sources, err := fitter.initialSources()
	if err != nil {
		return nil, err
	}

	var items []*fitItem
	for _, src := range sources {
		items = append(items, &fitItem{Data: src})
	}

	var results []*encoding.Result
	err = concurrency.Dispatcher(
		func(i *fitItem) ([]*fitItem, error) {
			if i.Output == nil {
				return []*fitItem{i}, nil
			}
			if i.Output.result != nil {
				results = append(results, i.Output.result)
			}
			var output []*fitItem
			for _, child := range i.Output.children {
				output = append(output, &fitItem{Data: child})
			}
			return output, nil
		},
		func(i *fitItem) (*fitOutput, error) {
			if i.Data.isDir {
				children, err := listDir(i.Data)
				return &fitOutput{children: children}, err
			}
			result, err := fitter.fitImage(i.Data)
			return &fitOutput{result: result}, err
		},
		items,
		fitter.config.Concurrency,
	)

	encoding.SortResults(results)
	log.Printf("[INFO] Fitted %d images\n", len(results))

	return results, err
}
