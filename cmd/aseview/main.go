// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Command aseview plays the tags of an Aseprite file in a window. Left and
// right switch between tags, space pauses and period steps one frame.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/kelindar/ase"
	"github.com/kelindar/ase/render"
	"golang.org/x/image/colornames"
)

const screenSize = 512

type viewer struct {
	asset  *ase.Asset
	sheet  *render.Sheet
	player *ase.Player
	state  *ase.State
	tags   []string
	tag    int
	scale  float64
	slice  string
}

func (v *viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		v.play(v.tag + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		v.play(v.tag - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if v.state.Status() == ase.Paused {
			v.state.Resume()
		} else {
			v.state.Pause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		v.logEvents(v.player.Step(v.state.Entity()))
	}

	v.logEvents(v.player.Tick(time.Second / time.Duration(ebiten.TPS())))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)

	doc := v.asset.Document
	op := render.Options(0, 0, nil)
	op.GeoM.Scale(v.scale, v.scale)
	op.GeoM.Translate(
		(screenSize-float64(doc.Width)*v.scale)/2,
		(screenSize-float64(doc.Height)*v.scale)/2,
	)
	v.sheet.DrawState(screen, v.state, op)

	if geo, ok := ase.Resolve(doc, v.slice, v.state.Frame()); ok {
		panel := image.Rectangle{Max: geo.Bounds.Size().Mul(3)}.Add(image.Pt(8, 64))
		v.sheet.DrawSlice(screen, geo, v.state.Frame(), panel)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("tag: %s\nframe: %d\nstatus: %s",
		v.tags[v.tag], v.state.Frame(), v.state.Status()))
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenSize, screenSize
}

// play switches to the tag at the given index, wrapping around.
func (v *viewer) play(index int) {
	v.tag = (index + len(v.tags)) % len(v.tags)
	v.state = v.player.Attach(1, v.asset.Document, ase.Play(v.tags[v.tag]))
}

func (v *viewer) logEvents(events []ase.Event) {
	for _, e := range events {
		switch e.Kind {
		case ase.EventLoopCompleted:
			log.Printf("%s: loop completed on frame %d", v.tags[v.tag], e.To)
		case ase.EventFinished:
			log.Printf("%s: finished on frame %d", v.tags[v.tag], e.To)
		}
	}
}

func main() {
	path := flag.String("file", "", "Aseprite file to play.")
	tag := flag.String("tag", "", "Tag to start with, all frames if empty.")
	slice := flag.String("slice", "", "Slice to draw as a nine-slice panel.")
	scale := flag.Float64("scale", 4, "Zoom factor.")
	flag.Parse()

	lib := ase.NewLibrary()
	asset, err := lib.Load(*path)
	if err != nil {
		log.Fatal(err)
	}

	atlas, err := asset.Atlas()
	if err != nil {
		log.Fatal(err)
	}

	v := &viewer{
		asset:  asset,
		sheet:  render.NewSheet(atlas),
		player: ase.NewPlayer(),
		tags:   []string{""},
		scale:  *scale,
		slice:  *slice,
	}

	start := 0
	for _, t := range asset.Document.Tags {
		if t.Name == *tag {
			start = len(v.tags)
		}
		v.tags = append(v.tags, t.Name)
	}
	v.play(start)

	ebiten.SetWindowSize(screenSize, screenSize)
	ebiten.SetWindowTitle("aseview - " + *path)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
