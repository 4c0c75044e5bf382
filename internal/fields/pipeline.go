package fields

import (
	"context"
	"log"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

// PipelineConfig tunes document conversion
type PipelineConfig struct {
	// HeaderFooterWindow is the fraction of a document's lines scanned at
	// each end for single-signal boilerplate. Outside the window a line
	// needs multiple independent signals before it is dropped.
	HeaderFooterWindow float64
	// MinWindowLines is the window floor for short documents
	MinWindowLines int
	// LenientSchema skips the serialized-document schema gate, keeping
	// only the structural invariant checks
	LenientSchema bool
	// Debug enables per-decision logging
	Debug bool
}

// DefaultPipelineConfig returns the standard conversion tuning
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		HeaderFooterWindow: 0.05,
		MinWindowLines:     3,
	}
}

// NarrativeLine is a surviving content line awaiting narrative assembly,
// tagged with the section that owns it.
type NarrativeLine struct {
	Line    doctext.DocumentLine
	Section string
}

// Context is the execution state of one document's conversion. Each stage
// reads and advances it; no state is shared between documents, so separate
// documents may convert concurrently.
type Context struct {
	Lines      []doctext.DocumentLine
	Candidates []doctext.CandidateField

	Title   string
	Section string
	Shape   FormShape

	Records   []FieldRecord
	Narrative []NarrativeLine

	Warnings         []PatternAmbiguityWarning
	PlaceholdersUsed map[Placeholder]int

	// processed keys, scoped by section, for idempotent extraction
	processed map[string]bool
}

// NewContext creates the execution state for one document
func NewContext(lines []doctext.DocumentLine) *Context {
	return &Context{
		Lines:            lines,
		PlaceholdersUsed: make(map[Placeholder]int),
		processed:        make(map[string]bool),
	}
}

// MarkProcessed records that a conceptual field key was extracted within a
// section, so weaker matches for the same concept become no-ops.
func (c *Context) MarkProcessed(section, key string) {
	c.processed[section+"\x00"+key] = true
}

// Processed reports whether a conceptual field key was already extracted
// within a section.
func (c *Context) Processed(section, key string) bool {
	return c.processed[section+"\x00"+key]
}

// AddRecord appends a candidate field record
func (c *Context) AddRecord(r FieldRecord) {
	c.Records = append(c.Records, r)
}

// AddNarrative appends a residual narrative line for the current section
func (c *Context) AddNarrative(line doctext.DocumentLine) {
	c.Narrative = append(c.Narrative, NarrativeLine{Line: line, Section: c.Section})
}

// Warn records a pattern ambiguity resolved by priority
func (c *Context) Warn(w PatternAmbiguityWarning) {
	c.Warnings = append(c.Warnings, w)
}

// Pipeline converts extracted document lines into validated SchemaDocuments.
// Stages run strictly in order; per-document execution is single-threaded.
type Pipeline struct {
	cfg PipelineConfig

	headerFooter *HeaderFooterFilter
	sections     *SectionClassifier
	matcher      *Matcher
	substitutor  *Substitutor
	roles        *SignatureRoleFilter
	normalizer   *Normalizer
	ordering     *OrderingEngine
	validator    *Validator
}

// NewPipeline creates a conversion pipeline with the given tuning
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.HeaderFooterWindow <= 0 {
		cfg.HeaderFooterWindow = DefaultPipelineConfig().HeaderFooterWindow
	}
	if cfg.MinWindowLines <= 0 {
		cfg.MinWindowLines = DefaultPipelineConfig().MinWindowLines
	}

	validator := NewValidator()
	validator.lenient = cfg.LenientSchema

	return &Pipeline{
		cfg:          cfg,
		headerFooter: NewHeaderFooterFilter(cfg),
		sections:     NewSectionClassifier(),
		matcher:      NewMatcher(cfg),
		substitutor:  NewSubstitutor(),
		roles:        NewSignatureRoleFilter(),
		normalizer:   NewNormalizer(),
		ordering:     NewOrderingEngine(),
		validator:    validator,
	}
}

// Convert runs the full pipeline over one document's line stream. The
// returned document satisfies every schema invariant; a document that
// cannot be repaired into compliance is rejected with SchemaViolationError.
func (p *Pipeline) Convert(ctx context.Context, lines []doctext.DocumentLine) (*SchemaDocument, error) {
	if len(lines) == 0 {
		return nil, &MalformedInputError{Reason: "empty line stream"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc := NewContext(lines)
	return p.run(pc)
}

// ConvertDocument converts an extracted document, making its AcroForm
// candidates available to the matcher.
func (p *Pipeline) ConvertDocument(ctx context.Context, doc *doctext.Document) (*SchemaDocument, error) {
	if doc == nil || len(doc.Lines) == 0 {
		return nil, &MalformedInputError{Reason: "empty line stream"}
	}
	if doc.ContentType == doctext.ContentTypeScannedImages {
		return nil, &MalformedInputError{Reason: "document contains no extractable text"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc := NewContext(doc.Lines)
	pc.Candidates = doc.Candidates
	return p.run(pc)
}

func (p *Pipeline) run(pc *Context) (*SchemaDocument, error) {
	p.headerFooter.Filter(pc)
	p.debugf("header/footer filter kept %d lines", len(pc.Lines))

	p.sections.Classify(pc)
	p.debugf("title %q shape %q", pc.Title, pc.Shape)

	if err := p.matcher.Match(pc); err != nil {
		return nil, err
	}
	p.debugf("matched %d records, %d narrative lines", len(pc.Records), len(pc.Narrative))

	p.substitutor.Substitute(pc)
	p.roles.Apply(pc)

	if err := p.normalizer.Normalize(pc); err != nil {
		return nil, err
	}

	p.ordering.Order(pc)

	report := p.validator.Validate(pc)
	p.debugf("validation state %s (%d violations, %d repaired)",
		report.State, len(report.Violations), len(report.Repaired))
	if report.State == StateRejected {
		return nil, &SchemaViolationError{Title: pc.Title, Violations: report.Remaining}
	}

	doc := &SchemaDocument{
		Title:   pc.Title,
		Section: pc.Section,
		Shape:   pc.Shape,
		Fields:  pc.Records,
	}
	for _, w := range pc.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}

	return doc, nil
}

func (p *Pipeline) debugf(format string, args ...any) {
	if p.cfg.Debug {
		log.Printf("pipeline: "+format, args...)
	}
}
