package render

import (
	"fmt"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"go.uber.org/zap"
)

const DefaultMarkerSize float32 = 10

// Stats counts what the last rendered frame issued.
type Stats struct {
	Passes      int
	Draws       int
	ProgramUses int
	Markers     int
}

// Sequencer turns a Frame into ordered passes and runs them on a Device.
type Sequencer struct {
	dev   Device
	lib   *MaterialLibrary
	log   *zap.SugaredLogger
	stats Stats
}

func NewSequencer(dev Device, lib *MaterialLibrary, log *zap.SugaredLogger) *Sequencer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sequencer{
		dev: dev,
		lib: lib,
		log: log,
	}
}

func (s *Sequencer) Stats() Stats {
	return s.stats
}

// Plan builds the pass list: Clear, OpaqueBase, one OpaqueAdditive per extra light,
// Transparent, DebugOverlay. It has no side effects on the device.
func (s *Sequencer) Plan(frame *Frame) []RenderPass {
	base := frame.Lights.Base()
	if base == nil {
		base = core.Unlit
	}
	extra := frame.Lights.Additional()

	passes := make([]RenderPass, 0, 4+len(extra))
	passes = append(passes, RenderPass{Kind: PassClear, Depth: DepthOpaque})

	passes = append(passes, RenderPass{
		Kind:  PassOpaqueBase,
		Blend: BlendNone,
		Depth: DepthOpaque,
		Light: base,
		Draws: s.opaqueDraws(frame, base.Kind()),
	})

	for _, light := range extra {
		passes = append(passes, RenderPass{
			Kind:  PassOpaqueAdditive,
			Blend: BlendAdditive,
			Depth: DepthReadOnly,
			Light: light,
			Draws: s.opaqueDraws(frame, light.Kind()),
		})
	}

	passes = append(passes, RenderPass{
		Kind:  PassTransparent,
		Blend: BlendAlpha,
		Depth: DepthReadOnly,
		Light: base,
		Draws: s.transparentDraws(frame),
	})

	overlay := RenderPass{Kind: PassDebugOverlay, Blend: BlendNone, Depth: DepthOpaque}
	if frame.ShowLightMarkers {
		overlay.Markers = LightMarkers(frame.Lights)
	}
	passes = append(passes, overlay)

	return passes
}

func (s *Sequencer) opaqueDraws(frame *Frame, kind core.LightKind) []DrawItem {
	var draws []DrawItem
	for _, g := range frame.Groups {
		if g.Transparent || g.Empty() {
			continue
		}
		mat, ok := s.lib.Select(kind, g.NormalMapped())
		if !ok {
			s.warnOnce(g, kind.String(), "no lit material for group %q under a %s light", g.Name, kind)
			continue
		}
		draws = append(draws, DrawItem{Material: mat, Group: g, Model: g.Transform})
	}
	return draws
}

func (s *Sequencer) transparentDraws(frame *Frame) []DrawItem {
	var draws []DrawItem
	for _, g := range frame.Groups {
		if !g.Transparent || g.Empty() {
			continue
		}
		name := g.Material
		if name == "" {
			name = core.ProfileBasic.Name
		}
		mat, ok := s.lib.Get(name)
		if !ok {
			s.warnOnce(g, "material", "transparent group %q uses unknown material %q", g.Name, name)
			continue
		}
		draws = append(draws, DrawItem{Material: mat, Group: g, Model: g.Transform})
	}
	return draws
}

// warnOnce logs a problem the first time it is seen for a group. The record
// lives on the group, so the sequencer keeps nothing for groups it has dropped.
func (s *Sequencer) warnOnce(g *ModelGroup, reason string, format string, args ...any) {
	if g.warned[reason] {
		return
	}
	if g.warned == nil {
		g.warned = make(map[string]bool)
	}
	g.warned[reason] = true
	s.log.Warnf(format, args...)
}

// Render executes one frame. Presenting the image is left to the caller.
func (s *Sequencer) Render(frame *Frame) error {
	passes := s.Plan(frame)

	if err := s.dev.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	stats := Stats{}
	for i := range passes {
		if err := s.execute(frame, &passes[i], &stats); err != nil {
			_ = s.dev.EndFrame()
			return err
		}
	}
	s.stats = stats

	if err := s.dev.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	return nil
}

func (s *Sequencer) execute(frame *Frame, pass *RenderPass, stats *Stats) error {
	stats.Passes++
	s.dev.SetBlend(pass.Blend)
	s.dev.SetDepth(pass.Depth)

	switch pass.Kind {
	case PassClear:
		s.dev.Clear()
		return nil
	case PassDebugOverlay:
		if len(pass.Markers) > 0 {
			size := frame.MarkerSize
			if size <= 0 {
				size = DefaultMarkerSize
			}
			s.dev.DrawMarkers(frame.ViewProjection(), pass.Markers, size)
			stats.Markers += len(pass.Markers)
		}
		return nil
	}

	var bound *Material
	prepared := make(map[*Material]bool)
	for _, item := range pass.Draws {
		mat := item.Material
		if mat != bound {
			if err := mat.Bind(s.dev); err != nil {
				return fmt.Errorf("%s pass, group %q: %w", pass.Kind, item.Group.Name, err)
			}
			bound = mat
			stats.ProgramUses++
			if !prepared[mat] {
				mat.SetCamera(s.dev, frame.View, frame.Projection)
				mat.SetLight(s.dev, pass.Light)
				mat.SetTextureUnits(s.dev)
				prepared[mat] = true
			}
		}

		units := mat.TextureUnits()
		for _, d := range item.Group.Instances {
			d.BindTextures(s.dev, units)
			d.Draw(s.dev, mat, item.Model)
			if d.Mesh.Valid() {
				stats.Draws++
			}
		}
	}
	return nil
}
