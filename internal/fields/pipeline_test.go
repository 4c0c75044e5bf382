package fields

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

func intakeLines() []doctext.DocumentLine {
	return plainLines(
		"# New Patient Intake Form",
		"First _____________ MI ____ Last _____________ Nickname ______",
		"Date of Birth: ____________",
		"Mobile _____________ Home _____________ Work ________",
		"E-mail: ______________",
		"Sex: ____________",
		"Marital Status: ____________",
		"Is the patient a minor?  Yes / No",
		"Employed By: ______________",
		"Signature: ______________     Date: ____________",
	)
}

func TestPipeline_PatientInfoDocument(t *testing.T) {
	doc, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), intakeLines())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if doc.Title != "New Patient Intake Form" {
		t.Errorf("Expected markdown header title, got %q", doc.Title)
	}
	if doc.Shape != ShapePatientInfo {
		t.Errorf("Expected patient_info shape, got %q", doc.Shape)
	}

	expected := []string{
		"first_name", "mi", "last_name", "nickname",
		"mobile", "home", "work", "e_mail", "date_of_birth",
		"sex", "marital_status", "is_the_patient_a_minor",
		"employed_by",
		KeySignature, KeyDateSigned,
	}
	if !reflect.DeepEqual(doc.Keys(), expected) {
		t.Fatalf("Expected reference field order %v, got %v", expected, doc.Keys())
	}

	for _, field := range doc.Fields {
		if field.Section != "New Patient Intake Form" {
			t.Errorf("Field %q: expected title section, got %q", field.Key, field.Section)
		}
	}

	email := findRecord(doc.Fields, "e_mail")
	if email.Control.InputType != InputTypeEmail {
		t.Errorf("Expected email input, got %q", email.Control.InputType)
	}
	minor := findRecord(doc.Fields, "is_the_patient_a_minor")
	if minor.Type != FieldRadio || minor.Control.Options[0].Value != true {
		t.Errorf("Expected boolean radio for minor question, got %v", minor)
	}
}

func TestPipeline_ConsentDocument(t *testing.T) {
	lines := plainLines(
		"Informed Consent for Tooth Extraction",
		"Patient Name: ______________",
		"Tooth Number: ______",
		"I, ________________ (print name), consent to the extraction.",
		"Dr. ____________ has explained the risks and benefits of treatment.",
		"I understand that alternative treatments were presented to me.",
		"I agree to pay all costs of treatment. (Initials) ________",
		"Patient Signature: ______________     Date: ____________",
		"Witness Signature: ______________",
	)

	doc, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if doc.Title != "Informed Consent for Tooth Extraction" {
		t.Errorf("Expected consent title, got %q", doc.Title)
	}
	if doc.Shape != ShapeConsent {
		t.Errorf("Expected consent shape, got %q", doc.Shape)
	}

	expected := []string{"form_1", "initials", KeySignature, KeyDateSigned}
	if !reflect.DeepEqual(doc.Keys(), expected) {
		t.Fatalf("Expected keys %v, got %v", expected, doc.Keys())
	}

	body := doc.Fields[0].Control.HTMLText
	for _, token := range []string{
		"Patient Name: {{patient_name}}",
		"Tooth Number: {{tooth_or_site}}",
		"I, {{patient_name}} (print name), consent to the extraction.",
		"Dr. {{provider}} has explained the risks and benefits of treatment.",
		"I agree to pay all costs of treatment.",
	} {
		if !strings.Contains(body, token) {
			t.Errorf("Expected narrative to contain %q, got %q", token, body)
		}
	}
	if strings.Contains(body, "Witness") {
		t.Errorf("Expected witness block removed from narrative, got %q", body)
	}
}

func TestPipeline_GenericDocument(t *testing.T) {
	lines := plainLines(
		"**Limited Warranty Agreement**",
		"All restorations are warranted for five years from the date of placement.",
		"The warranty is void if regular hygiene visits are not maintained.",
	)

	doc, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if doc.Title != "Limited Warranty Agreement" {
		t.Errorf("Expected bold wrap title, got %q", doc.Title)
	}
	if doc.Shape != ShapeGeneric {
		t.Errorf("Expected generic shape, got %q", doc.Shape)
	}
	if len(doc.Fields) != 1 || doc.Fields[0].Key != "form_1" {
		t.Fatalf("Expected a single narrative field, got %v", doc.Keys())
	}
	if !strings.Contains(doc.Fields[0].Control.HTMLText, "warranted for five years") {
		t.Errorf("Expected narrative body kept, got %q", doc.Fields[0].Control.HTMLText)
	}
	for _, field := range doc.Fields {
		if field.Type == FieldSignature {
			t.Error("Expected no synthesized signature on generic documents")
		}
	}
}

func TestPipeline_BareDateBecomesTodayPlaceholder(t *testing.T) {
	lines := plainLines(
		"Signed: ______________",
		"Date: ____________",
	)

	doc, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if doc.Title != FallbackTitle {
		t.Errorf("Expected fallback title, got %q", doc.Title)
	}
	expected := []string{"form_1", KeySignature}
	if !reflect.DeepEqual(doc.Keys(), expected) {
		t.Fatalf("Expected keys %v, got %v", expected, doc.Keys())
	}
	if doc.Fields[0].Control.HTMLText != "<p>Date: {{today_date}}</p>" {
		t.Errorf("Expected bare date substituted, got %q", doc.Fields[0].Control.HTMLText)
	}
}

func TestPipeline_DemographicLabelsBecomeFields(t *testing.T) {
	lines := plainLines(
		"# Patient Information",
		"First Name: ______________",
		"Last Name: ______________",
		"Date of Birth: ______________",
		"Phone: ______________",
		"Signature: ______________     Date: ____________",
	)

	doc, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), lines)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	expected := []string{"first_name", "last_name", "date_of_birth", "phone", KeySignature, KeyDateSigned}
	if !reflect.DeepEqual(doc.Keys(), expected) {
		t.Fatalf("Expected keys %v, got %v", expected, doc.Keys())
	}

	dob := findRecord(doc.Fields, "date_of_birth")
	if dob.Type != FieldDate || dob.Control.InputType != DatePast {
		t.Errorf("Expected past date field for date of birth, got %s %q", dob.Type, dob.Control.InputType)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	_, err := NewPipeline(DefaultPipelineConfig()).Convert(context.Background(), nil)

	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedInputError, got %v", err)
	}
	if malformed.Reason != "empty line stream" {
		t.Errorf("Expected empty stream reason, got %q", malformed.Reason)
	}
}

func TestPipeline_ScannedDocumentRejected(t *testing.T) {
	doc := &doctext.Document{
		ContentType: doctext.ContentTypeScannedImages,
		Lines:       plainLines("unused"),
	}

	_, err := NewPipeline(DefaultPipelineConfig()).ConvertDocument(context.Background(), doc)

	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedInputError, got %v", err)
	}
	if malformed.Reason != "document contains no extractable text" {
		t.Errorf("Expected scanned document reason, got %q", malformed.Reason)
	}
}

func TestPipeline_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(DefaultPipelineConfig()).Convert(ctx, intakeLines())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context cancellation, got %v", err)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	p := NewPipeline(DefaultPipelineConfig())

	first, err := p.Convert(context.Background(), intakeLines())
	if err != nil {
		t.Fatalf("First conversion failed: %v", err)
	}
	second, err := p.Convert(context.Background(), intakeLines())
	if err != nil {
		t.Fatalf("Second conversion failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical documents from identical input")
	}
}
