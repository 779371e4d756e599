// Package scan runs card photographs through rectification, text
// recognition, identifier parsing and catalog lookup.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"

	"card-rectifier/internal/identifier"
	"card-rectifier/internal/lookup"
	"card-rectifier/internal/recognize"
	"card-rectifier/internal/rectify"

	"github.com/rs/zerolog"
)

// Stages after rectification. Rectification failures carry the rectify stage.
const (
	StageRecognize = "recognize"
	StageIdentify  = "identify"
	StageLookup    = "lookup"
	StagePanic     = "panic"
	StageCanceled  = "canceled"
)

// Report is the outcome of scanning one image.
type Report struct {
	Source     string                 `json:"source"`
	Region     image.Image            `json:"-"`
	Text       string                 `json:"text,omitempty"`
	Confidence float64                `json:"confidence"`
	Identifier *identifier.Identifier `json:"identifier,omitempty"`
	Card       *lookup.Card           `json:"card,omitempty"` // nil when the catalog has no entry
	Stage      string                 `json:"stage,omitempty"`
	Err        error                  `json:"-"`
}

// Failed reports whether the image could not be identified.
func (r *Report) Failed() bool { return r.Err != nil }

func (r *Report) fail(stage string, err error) *Report {
	r.Stage, r.Err = stage, err
	return r
}

// Scanner identifies cards. It is safe for concurrent use when its
// collaborators are.
type Scanner struct {
	rect   *rectify.Rectifier
	rec    recognize.Recognizer
	lookup lookup.Lookup
	log    zerolog.Logger
}

// New returns a Scanner. A nil lookup disables catalog lookups.
func New(rect *rectify.Rectifier, rec recognize.Recognizer, lk lookup.Lookup, log zerolog.Logger) *Scanner {
	if lk == nil {
		lk = lookup.Nop{}
	}
	return &Scanner{rect: rect, rec: rec, lookup: lk, log: log.With().Str("component", "scan").Logger()}
}

// ScanFile identifies the card photographed in the image at path.
func (s *Scanner) ScanFile(ctx context.Context, path string) *Report {
	rep := &Report{Source: path}
	region, err := s.rect.RectifyCardText(path)
	if err != nil {
		return s.rectifyFailed(rep, err)
	}
	return s.identify(ctx, rep, region)
}

// ScanBytes identifies the card in an encoded image. name labels the report.
func (s *Scanner) ScanBytes(ctx context.Context, name string, buf []byte) *Report {
	rep := &Report{Source: name}
	region, err := s.rect.RectifyBytes(buf)
	if err != nil {
		return s.rectifyFailed(rep, err)
	}
	return s.identify(ctx, rep, region)
}

func (s *Scanner) rectifyFailed(rep *Report, err error) *Report {
	stage, _ := rectify.StageOf(err)
	s.log.Warn().Str("file", rep.Source).Str("stage", string(stage)).Err(err).Msg("rectification failed")
	return rep.fail(string(stage), err)
}

func (s *Scanner) identify(ctx context.Context, rep *Report, region image.Image) *Report {
	rep.Region = region
	log := s.log.With().Str("file", rep.Source).Logger()

	res, err := s.rec.Recognize(ctx, region)
	if err != nil {
		log.Warn().Err(err).Msg("recognition failed")
		return rep.fail(StageRecognize, fmt.Errorf("recognize: %w", err))
	}
	rep.Text, rep.Confidence = res.Text, res.Confidence
	log.Debug().Str("text", res.Text).Float64("confidence", res.Confidence).Msg("recognized")

	id, err := identifier.Parse(res.Text)
	if err != nil {
		log.Warn().Str("text", res.Text).Msg("no identifier in recognized text")
		return rep.fail(StageIdentify, err)
	}
	rep.Identifier = &id

	card, err := s.lookup.Lookup(ctx, id)
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		log.Info().Str("key", id.Key()).Msg("card not in catalog")
	case err != nil:
		log.Warn().Err(err).Msg("lookup failed")
		return rep.fail(StageLookup, err)
	default:
		rep.Card = &card
	}
	return rep
}
