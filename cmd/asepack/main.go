// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Command asepack decodes Aseprite files, packs their frames into texture
// atlas pages and writes the pages with YAML metadata into a directory, a
// resource file, or both.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		output     = flag.String("out", "", "output directory")
		database   = flag.String("db", "", "path to the resource file")
		width      = flag.Int("width", 0, "maximum page width")
		height     = flag.Int("height", 0, "maximum page height")
		preview    = flag.Int("preview", -1, "scale of the preview pages, 0 to disable")
		watch      = flag.Bool("watch", false, "repack the inputs when they change")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Flags override the configuration file
	if args := flag.Args(); len(args) > 0 {
		cfg.Inputs = args
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *width > 0 {
		cfg.MaxWidth = *width
	}
	if *height > 0 {
		cfg.MaxHeight = *height
	}
	if *preview >= 0 {
		cfg.Preview = *preview
	}

	if err := cfg.validate(); err != nil {
		log.Fatalf("asepack: %v", err)
	}

	files, err := cfg.files()
	if err != nil {
		log.Fatalf("asepack: %v", err)
	}

	p, err := newPacker(cfg)
	if err != nil {
		log.Fatalf("asepack: %v", err)
	}
	defer p.Close()

	failed := p.packAll(files)
	if !*watch {
		if failed > 0 {
			p.Close()
			os.Exit(1)
		}
		return
	}

	if err := p.watch(files); err != nil {
		p.Close()
		log.Fatalf("asepack: %v", err)
	}
}

// packAll packs every file, logging the failures, and returns the number of
// files that could not be packed.
func (p *packer) packAll(files []string) (failed int) {
	for _, path := range files {
		meta, err := p.pack(path)
		if err != nil {
			log.Printf("asepack: %v", err)
			failed++
			continue
		}

		log.Printf("asepack: packed %s (%d frames, %d pages)", path, len(meta.Frames), len(meta.Pages))
	}
	return
}

// watch repacks the files whenever they change, until interrupted.
func (p *packer) watch(files []string) error {
	w, err := newWatcher(files)
	if err != nil {
		return err
	}
	defer w.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	log.Printf("asepack: watching %d files", len(files))

	for {
		select {
		case path := <-w.Events:
			p.packAll([]string{path})
		case err := <-w.Errors:
			log.Printf("asepack: watch error: %v", err)
		case <-stop:
			return nil
		}
	}
}
