// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelindar/ase"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

// Buckets of the resource file
var (
	bucketAtlases = []byte("atlases")
	bucketPages   = []byte("pages")
)

// packer decodes and packs sprites and writes the results.
type packer struct {
	cfg Config
	lib *ase.Library
	db  *bolt.DB
}

// newPacker creates a packer, opening the resource file if one is configured.
func newPacker(cfg Config) (*packer, error) {
	p := &packer{
		cfg: cfg,
		lib: ase.NewLibrary(ase.WithMaxAtlasSize(cfg.MaxWidth, cfg.MaxHeight)),
	}

	if cfg.Output != "" {
		if err := os.MkdirAll(cfg.Output, 0755); err != nil {
			return nil, err
		}
	}

	if cfg.Database != "" {
		db, err := bolt.Open(cfg.Database, 0666, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to open resource file '%s': %w", cfg.Database, err)
		}

		if err := db.Update(func(tx *bolt.Tx) error {
			for _, name := range [][]byte{bucketAtlases, bucketPages} {
				if _, err := tx.CreateBucketIfNotExists(name); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			db.Close()
			return nil, err
		}
		p.db = db
	}

	return p, nil
}

// Close closes the resource file.
func (p *packer) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// output is the encoded result of packing a sprite.
type output struct {
	meta    *Metadata
	pages   [][]byte // PNG pages
	preview [][]byte // Scaled PNG pages, if enabled
}

// pack decodes, packs and writes a single sprite. The library entry of the
// file is evicted first, so that a modified file is decoded again.
func (p *packer) pack(path string) (*Metadata, error) {
	p.lib.Remove(filepath.Clean(path))
	asset, err := p.lib.Load(path)
	if err != nil {
		return nil, err
	}

	atlas, err := asset.Atlas()
	if err != nil {
		return nil, err
	}

	out, err := p.encode(spriteName(path), asset.Document, atlas)
	if err != nil {
		return nil, err
	}

	if p.cfg.Output != "" {
		if err := out.writeDir(p.cfg.Output); err != nil {
			return nil, err
		}
	}

	if p.db != nil {
		if err := out.store(p.db); err != nil {
			return nil, err
		}
	}

	return out.meta, nil
}

// encode builds the metadata and encodes the pages of an atlas.
func (p *packer) encode(name string, doc *ase.Document, atlas *ase.Atlas) (*output, error) {
	out := &output{meta: newMetadata(name, doc, atlas)}
	for _, page := range atlas.Pages {
		data, err := encodePNG(page)
		if err != nil {
			return nil, err
		}
		out.pages = append(out.pages, data)

		if p.cfg.Preview > 1 {
			data, err := encodePNG(scale(page, p.cfg.Preview))
			if err != nil {
				return nil, err
			}
			out.preview = append(out.preview, data)
		}
	}
	return out, nil
}

// writeDir writes the pages and the metadata into a directory.
func (o *output) writeDir(dir string) error {
	for i, data := range o.pages {
		if err := os.WriteFile(filepath.Join(dir, o.meta.Pages[i].File), data, 0644); err != nil {
			return err
		}
	}

	for i, data := range o.preview {
		name := strings.TrimSuffix(o.meta.Pages[i].File, ".png") + "_preview.png"
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}

	meta, err := yaml.Marshal(o.meta)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, o.meta.Name+".yaml"), meta, 0644)
}

// store writes the pages and the metadata into the resource file, replacing
// a previous version of the same sprite.
func (o *output) store(db *bolt.DB) error {
	meta, err := yaml.Marshal(o.meta)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		pages, atlases := tx.Bucket(bucketPages), tx.Bucket(bucketAtlases)
		if pages == nil || atlases == nil {
			return fmt.Errorf("the resource file has no '%s' or '%s' bucket", bucketPages, bucketAtlases)
		}

		// Remove the pages listed by the previous version
		if data := atlases.Get([]byte(o.meta.Name)); data != nil {
			var prev Metadata
			if err := yaml.Unmarshal(data, &prev); err != nil {
				return fmt.Errorf("unable to read the metadata of '%s': %w", o.meta.Name, err)
			}

			for _, page := range prev.Pages {
				if err := pages.Delete([]byte(page.File)); err != nil {
					return err
				}
			}
		}

		for i, data := range o.pages {
			if err := pages.Put([]byte(o.meta.Pages[i].File), data); err != nil {
				return err
			}
		}

		return atlases.Put([]byte(o.meta.Name), meta)
	})
}

// scale enlarges an image by an integer factor without smoothing.
func scale(src image.Image, factor int) *image.NRGBA {
	size := src.Bounds().Size().Mul(factor)
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// spriteName returns the name of a sprite from its path.
func spriteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
