package hclconfig

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

func (l *Loader) mergeSettings(dst *config.Settings, s *Settings) {
	if s.Namespace != nil {
		dst.Namespace = *s.Namespace
	}
	if s.NegativeTruth != nil {
		dst.NegativeTruth = *s.NegativeTruth
	}
	if s.RecursionLimit != nil {
		dst.RecursionLimit = *s.RecursionLimit
	}
	if s.ParamSlots != nil {
		dst.ParamSlots = *s.ParamSlots
	}
	if s.PoolCapacity != nil {
		dst.PoolCapacity = *s.PoolCapacity
	}
}

// translateSection evaluates the lines attribute. It accepts a string
// (usually a heredoc) or a list of strings, one directive per element. A
// section without lines has an empty body.
func (l *Loader) translateSection(ctx context.Context, s *Section, src []byte) (*config.Section, error) {
	val, diags := s.Lines.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("section %q: %w", s.Name, diags)
	}
	body, err := linesText(val)
	if err != nil {
		return nil, fmt.Errorf("%s: section %q: lines %w", s.Lines.Range(), s.Name, err)
	}

	rng := s.Lines.Range()
	first := rng.Start.Line
	if raw := rng.SliceBytes(src); bytes.HasPrefix(raw, []byte("<<")) || (bytes.HasPrefix(raw, []byte("[")) && rng.End.Line > rng.Start.Line) {
		// The body starts on the line after the heredoc marker or bracket.
		first++
	}

	sec := &config.Section{
		Name: s.Name,
		Body: body,
		File: rng.Filename,
		Line: first,
	}
	if s.Namespace != nil {
		sec.Namespace = *s.Namespace
	}
	if s.Hash != nil {
		sec.Hash = strings.ToLower(*s.Hash)
	}
	if s.FilterIndex != nil {
		f := float32(*s.FilterIndex)
		sec.FilterIndex = &f
	}
	ctxlog.FromContext(ctx).Debug("Translated section.", "name", s.Name, "file", sec.File, "line", sec.Line)
	return sec, nil
}

func linesText(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("must be a known string or list of strings")
	}
	if val.Type() == cty.String {
		return val.AsString(), nil
	}
	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return "", fmt.Errorf("must be a string or list of strings: %w", err)
	}
	var lines []string
	if err := gocty.FromCtyValue(list, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (l *Loader) translateResource(r *Resource) *config.Resource {
	res := &config.Resource{Name: r.Name, Type: "texture2d"}
	if r.Type != nil {
		res.Type = strings.ToLower(*r.Type)
	}
	if r.Width != nil {
		res.Width = *r.Width
	}
	if r.Height != nil {
		res.Height = *r.Height
	}
	if r.Format != nil {
		res.Format = *r.Format
	}
	if r.ByteSize != nil {
		res.ByteSize = *r.ByteSize
	}
	if r.SampleCount != nil {
		res.SampleCount = *r.SampleCount
	}
	return res
}

func (l *Loader) mergeReplay(ctx context.Context, dst *config.Replay, r *Replay) error {
	if r.Frames != nil {
		dst.Frames = *r.Frames
	}
	for _, t := range r.Textures {
		tex := &config.Texture{Name: t.Name, Width: t.Width, Height: t.Height, Bind: t.Bind, Format: "rgba8unorm"}
		if t.Hash != nil {
			tex.Hash = strings.ToLower(*t.Hash)
		}
		if t.Format != nil {
			tex.Format = *t.Format
		}
		dst.Textures = append(dst.Textures, tex)
	}
	for _, e := range r.Events {
		ev, err := l.translateEvent(ctx, e)
		if err != nil {
			return err
		}
		dst.Events = append(dst.Events, ev)
	}
	return nil
}

// callFields maps the draw parameter attributes of an event block to the
// fields they fill.
var callFields = map[string]func(c *config.Call) any{
	"vertex_count":   func(c *config.Call) any { return &c.VertexCount },
	"index_count":    func(c *config.Call) any { return &c.IndexCount },
	"instance_count": func(c *config.Call) any { return &c.InstanceCount },
	"first_vertex":   func(c *config.Call) any { return &c.FirstVertex },
	"first_index":    func(c *config.Call) any { return &c.FirstIndex },
	"first_instance": func(c *config.Call) any { return &c.FirstInstance },
	"base_vertex":    func(c *config.Call) any { return &c.BaseVertex },
}

func (l *Loader) translateEvent(ctx context.Context, e *Event) (*config.Event, error) {
	ev := &config.Event{Kind: strings.ToLower(e.Kind)}
	if e.Section != nil {
		ev.Section = *e.Section
	}
	if e.Texture != nil {
		ev.Texture = *e.Texture
	}

	if isExprDefined(e.Telemetry) {
		val, diags := e.Telemetry.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("event %q telemetry: %w", e.Kind, diags)
		}
		m, err := convert.Convert(val, cty.Map(cty.Number))
		if err != nil {
			return nil, fmt.Errorf("%s: event %q telemetry must be a map of numbers: %w", e.Telemetry.Range(), e.Kind, err)
		}
		if err := gocty.FromCtyValue(m, &ev.Telemetry); err != nil {
			return nil, fmt.Errorf("%s: event %q telemetry: %w", e.Telemetry.Range(), e.Kind, err)
		}
	}

	if e.Remain == nil {
		return ev, nil
	}
	attrs, diags := e.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("event %q: %w", e.Kind, diags)
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := decodeCallAttr(&ev.Call, attrs[name]); err != nil {
			return nil, fmt.Errorf("%s: event %q: %w", attrs[name].Range, e.Kind, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Translated replay event.", "kind", ev.Kind, "section", ev.Section)
	return ev, nil
}

func decodeCallAttr(call *config.Call, attr *hcl.Attribute) error {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return diags
	}
	if attr.Name == "thread_groups" {
		list, err := convert.Convert(val, cty.List(cty.Number))
		if err != nil {
			return fmt.Errorf("thread_groups: %w", err)
		}
		var groups []uint32
		if err := gocty.FromCtyValue(list, &groups); err != nil {
			return fmt.Errorf("thread_groups: %w", err)
		}
		if len(groups) != 3 {
			return fmt.Errorf("thread_groups needs 3 values, got %d", len(groups))
		}
		copy(call.ThreadGroups[:], groups)
		return nil
	}
	field, ok := callFields[attr.Name]
	if !ok {
		return fmt.Errorf("unsupported attribute %q", attr.Name)
	}
	if err := gocty.FromCtyValue(val, field(call)); err != nil {
		return fmt.Errorf("%s: %w", attr.Name, err)
	}
	return nil
}

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional expression fields with a
// zero-width placeholder.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
