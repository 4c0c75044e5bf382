package fields

import (
	"regexp"
	"sort"
	"strings"
)

// referenceOverlapThreshold is the extracted-key overlap at which a
// reference ordering takes over from generic category ordering.
const referenceOverlapThreshold = 0.5

// npfReferenceOrder is the canonical key sequence of the new patient form
// packet, the most common comprehensive intake shape. Documents overlapping
// it sufficiently are emitted in this order.
var npfReferenceOrder = []string{
	"todays_date", "first_name", "mi", "last_name", "nickname", "street", "apt_unit_suite",
	"city", "state", "zip", "mobile", "home", "work", "e_mail", "drivers_license", "state_2",
	"what_is_your_preferred_method_of_contact", "ssn", "date_of_birth", "patient_employed_by",
	"occupation", "street_2", "city_2", "state_3", "zip_2", "sex", "marital_status",
	"in_case_of_emergency_who_should_be_notified", "relationship_to_patient", "mobile_2",
	"home_2", "is_the_patient_a_minor", "full_time_student", "name_of_school",
	"first_name_2", "last_name_2", "date_of_birth_2", "relationship_to_patient_2",
	"primary_residence", "street_3", "city_3", "state_4", "zip_3", "mobile_3", "home_3",
	"work_2", "employer_if_different_from_above", "occupation_2", "street_4", "city_4",
	"state_5", "zip_4", "name_of_insured", "date_of_birth_3", "ssn_2", "insurance_company",
	"phone", "street_5", "city_5", "state_6", "zip_5", "dental_plan_name",
	"plan_group_number", "id_number", "patient_relationship_to_insured",
	"name_of_insured_2", "date_of_birth_4", "ssn_3", "insurance_company_2", "phone_2",
	"street_6", "city_6", "state_7", "zip_6", "dental_plan_name_2", "plan_group_number_2",
	"id_number_2", "patient_relationship_to_insured_2", "initials", "initials_2",
	"i_authorize_the_release_of_my_personal_information_necessary_to_process_my_dental_benefit_claims_including_health_information",
	"initials_3", "signature", "date_signed",
}

// orderCategory buckets fields for generic ordering and for inserting keys
// a reference sequence does not know about.
type orderCategory int

const (
	categoryNarrative orderCategory = iota
	categoryPrimary
	categorySignature
	categoryDateSigned
	categorySecondary
)

var numericSuffixRe = regexp.MustCompile(`_\d+$`)

// categorize assigns a record its ordering bucket
func categorize(rec FieldRecord) orderCategory {
	switch {
	case rec.Type == FieldText:
		return categoryNarrative
	case rec.Type == FieldSignature:
		return categorySignature
	case rec.Key == KeyDateSigned:
		return categoryDateSigned
	case isSecondaryInput(rec):
		return categorySecondary
	default:
		return categoryPrimary
	}
}

// isSecondaryInput reports whether a field belongs to a repeated block,
// recognizable by a numbered key or an "if different" hint.
func isSecondaryInput(rec FieldRecord) bool {
	if numericSuffixRe.MatchString(rec.Key) {
		return true
	}
	return rec.Control.Hint != nil &&
		strings.Contains(strings.ToLower(*rec.Control.Hint), "if different")
}

// OrderingEngine computes the canonical output order. The reference
// sequence is instance state so concurrent pipelines stay independent.
type OrderingEngine struct {
	reference []string
	index     map[string]int
}

// NewOrderingEngine creates an ordering engine with the intake packet
// reference sequence.
func NewOrderingEngine() *OrderingEngine {
	return NewOrderingEngineWithReference(npfReferenceOrder)
}

// NewOrderingEngineWithReference creates an ordering engine around a custom
// reference sequence.
func NewOrderingEngineWithReference(reference []string) *OrderingEngine {
	index := make(map[string]int, len(reference))
	for i, key := range reference {
		index[key] = i
	}
	return &OrderingEngine{reference: reference, index: index}
}

// Order arranges the context's records into canonical output order. Ties
// break on extraction position, never on key text.
func (e *OrderingEngine) Order(pc *Context) {
	sort.SliceStable(pc.Records, func(i, j int) bool {
		return pc.Records[i].Ordinal < pc.Records[j].Ordinal
	})

	if e.overlap(pc.Records) >= referenceOverlapThreshold {
		e.orderByReference(pc)
		return
	}

	sort.SliceStable(pc.Records, func(i, j int) bool {
		ci, cj := categorize(pc.Records[i]), categorize(pc.Records[j])
		if ci != cj {
			return ci < cj
		}
		return pc.Records[i].Ordinal < pc.Records[j].Ordinal
	})
}

// overlap computes the fraction of distinct extracted keys present in the
// reference sequence.
func (e *OrderingEngine) overlap(records []FieldRecord) float64 {
	keys := make(map[string]bool, len(records))
	for _, rec := range records {
		keys[rec.Key] = true
	}
	if len(keys) == 0 {
		return 0
	}
	matched := 0
	for key := range keys {
		if _, ok := e.index[key]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(keys))
}

// orderByReference sorts reference keys by their reference index and slots
// everything else in by category: narrative up front, unknown primary
// inputs before the signature block, secondary inputs at the end.
func (e *OrderingEngine) orderByReference(pc *Context) {
	var ref, narrative, primary, secondary []FieldRecord
	for _, rec := range pc.Records {
		if _, ok := e.index[rec.Key]; ok {
			ref = append(ref, rec)
			continue
		}
		switch categorize(rec) {
		case categoryNarrative:
			narrative = append(narrative, rec)
		case categorySecondary:
			secondary = append(secondary, rec)
		default:
			primary = append(primary, rec)
		}
	}

	sort.SliceStable(ref, func(i, j int) bool {
		return e.index[ref[i].Key] < e.index[ref[j].Key]
	})

	cut := len(ref)
	for i, rec := range ref {
		if c := categorize(rec); c == categorySignature || c == categoryDateSigned {
			cut = i
			break
		}
	}

	out := make([]FieldRecord, 0, len(pc.Records))
	out = append(out, narrative...)
	out = append(out, ref[:cut]...)
	out = append(out, primary...)
	out = append(out, ref[cut:]...)
	out = append(out, secondary...)
	pc.Records = out
}
