package record

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Substitution records a default that replaced an absent field.
type Substitution struct {
	Path    string
	Default string
}

// Normalizer resolves aliases and defaults into a canonical types.ResumeRecord.
// The zero value is ready to use.
type Normalizer struct {
	// OnDefault, when set, is called once for every substituted default in document order.
	OnDefault func(Substitution)
}

// Normalize is a convenience wrapper around a zero Normalizer.
func Normalize(obj *Object) (*types.ResumeRecord, error) {
	var n Normalizer
	return n.Normalize(obj)
}

// Normalize returns the canonical record, or a *MalformedRecordError listing every
// field whose value could not be coerced. A nil object is treated as empty.
func (n *Normalizer) Normalize(obj *Object) (*types.ResumeRecord, error) {
	if obj == nil {
		obj = NewObject()
	}
	s := &state{n: n}

	rec := &types.ResumeRecord{
		Name:      s.scalar("", obj, fieldName),
		Location:  s.scalar("", obj, fieldLocation),
		Email:     s.scalar("", obj, fieldEmail),
		Phone:     s.scalar("", obj, fieldPhone),
		LinkedIn:  s.scalar("", obj, fieldLinkedIn),
		Portfolio: s.scalar("", obj, fieldPortfolio),
		Objective: s.scalar("", obj, fieldObjective),
		Summary:   s.stringList("Summary", obj, listSummary),
		Languages: s.scalar("", obj, fieldLanguages),
	}

	s.entries("Education", obj, listEducation, func(path string, o *Object) {
		rec.Education = append(rec.Education, types.EducationEntry{
			Degree:                  s.scalar(path, o, eduDegree),
			University:              s.scalar(path, o, eduUniversity),
			Location:                s.scalar(path, o, eduLocation),
			Duration:                s.scalar(path, o, eduDuration),
			CGPA:                    s.scalar(path, o, eduCGPA),
			Percentage:              s.scalar(path, o, eduPercentage),
			RelevantCoursework:      s.stringList(join(path, "RelevantCoursework"), o, eduCoursework),
			HonorsAndQualifications: s.stringList(join(path, "HonorsAndQualifications"), o, eduHonors),
		})
	})

	s.entries("Experience", obj, listExperience, func(path string, o *Object) {
		rec.Experience = append(rec.Experience, types.ExperienceEntry{
			JobRole:          s.scalar(path, o, expJobRole),
			CompanyName:      s.scalar(path, o, expCompanyName),
			Duration:         s.scalar(path, o, expDuration),
			Location:         s.scalar(path, o, expLocation),
			WhatHeDid:        s.stringList(join(path, "WhatHeDid"), o, expWhat),
			HowHeDidIt:       s.stringList(join(path, "HowHeDidIt"), o, expHow),
			ImpactMade:       s.stringList(join(path, "ImpactMade"), o, expImpact),
			Responsibilities: s.text(path, o, expResponsibilities),
		})
	})

	s.entries("Projects", obj, listProjects, func(path string, o *Object) {
		rec.Projects = append(rec.Projects, types.ProjectEntry{
			Title:       s.scalar(path, o, projTitle),
			Description: s.text(path, o, projDescription),
			Tools:       s.stringList(join(path, "Tools"), o, projTools),
			Link:        s.scalar(path, o, projLink),
		})
	})

	rec.Skills = s.skills(obj)

	s.entries("Certificates", obj, listCertificates, func(path string, o *Object) {
		rec.Certificates = append(rec.Certificates, types.CertificateEntry{
			Name:                s.scalar(path, o, certName),
			IssuingOrganization: s.scalar(path, o, certOrganization),
			Date:                s.scalar(path, o, certDate),
			ExpiryDate:          s.scalar(path, o, certExpiry),
			CertificateNumber:   s.scalar(path, o, certNumber),
			VerificationURL:     s.scalar(path, o, certVerification),
			AdditionalDetails:   s.text(path, o, certDetails),
		})
	})

	if len(s.errs) > 0 {
		return nil, &MalformedRecordError{Fields: s.errs}
	}
	return rec, nil
}

type state struct {
	n    *Normalizer
	errs []FieldError
}

func (s *state) fail(path, format string, args ...any) {
	s.errs = append(s.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (s *state) substituted(path, def string) {
	if s.n != nil && s.n.OnDefault != nil {
		s.n.OnDefault(Substitution{Path: path, Default: def})
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// lookup returns the first alias holding a usable value.
func lookup(obj *Object, aliases []string, emptyIsAbsent bool) (any, string, bool) {
	for _, alias := range aliases {
		v, ok := obj.Get(alias)
		if !ok || v == nil {
			continue
		}
		if emptyIsAbsent {
			if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
				continue
			}
		}
		return v, alias, true
	}
	return nil, "", false
}

func (s *state) scalar(prefix string, obj *Object, f field) string {
	path := join(prefix, f.Name)
	v, _, ok := lookup(obj, f.Aliases, f.EmptyIsAbsent)
	if !ok {
		if f.Default != "" {
			s.substituted(path, f.Default)
		}
		return f.Default
	}
	str, ok := scalarString(v)
	if !ok {
		s.fail(path, "expected a string, got %s", jsonKind(v))
		return ""
	}
	return str
}

// text is like scalar but also accepts a list, joining its items with spaces.
func (s *state) text(prefix string, obj *Object, f field) string {
	v, _, ok := lookup(obj, f.Aliases, f.EmptyIsAbsent)
	if ok {
		if items, isList := v.([]any); isList {
			parts := make([]string, 0, len(items))
			for i, item := range items {
				str, ok := scalarString(item)
				if !ok {
					s.fail(fmt.Sprintf("%s[%d]", join(prefix, f.Name), i), "expected a string, got %s", jsonKind(item))
					continue
				}
				if str != "" {
					parts = append(parts, str)
				}
			}
			return strings.Join(parts, " ")
		}
	}
	return s.scalar(prefix, obj, f)
}

func (s *state) stringList(path string, obj *Object, aliases []string) []string {
	v, _, ok := lookup(obj, aliases, false)
	if !ok {
		return nil
	}
	return s.coerceList(path, v)
}

func (s *state) coerceList(path string, v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for i, item := range t {
			if item == nil {
				continue
			}
			str, ok := scalarString(item)
			if !ok {
				s.fail(fmt.Sprintf("%s[%d]", path, i), "expected a string, got %s", jsonKind(item))
				continue
			}
			if str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		str, ok := scalarString(v)
		if !ok {
			s.fail(path, "expected a list of strings, got %s", jsonKind(v))
			return nil
		}
		if str == "" {
			return nil
		}
		return []string{str}
	}
}

func (s *state) entries(path string, obj *Object, aliases []string, each func(path string, o *Object)) {
	v, _, ok := lookup(obj, aliases, false)
	if !ok {
		return
	}
	items, isList := v.([]any)
	if !isList {
		s.fail(path, "expected a list of objects, got %s", jsonKind(v))
		return
	}
	for i, item := range items {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		o, isObj := item.(*Object)
		if !isObj {
			s.fail(entryPath, "expected an object, got %s", jsonKind(item))
			continue
		}
		each(entryPath, o)
	}
}

func (s *state) skills(obj *Object) types.SkillSet {
	v, _, ok := lookup(obj, listSkills, false)
	if !ok {
		return nil
	}
	o, isObj := v.(*Object)
	if !isObj {
		s.fail("Skills", "expected an object, got %s", jsonKind(v))
		return nil
	}
	var out types.SkillSet
	for _, category := range o.Keys() {
		raw, _ := o.Get(category)
		var values []string
		if raw != nil {
			values = s.coerceList("Skills."+category, raw)
		}
		out = append(out, types.SkillCategory{Category: strings.TrimSpace(category), Values: values})
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// ParseLenient parses JSON produced by a language model. Trailing commas are removed
// and, when the text carries prose around the document, only the outermost braces are kept.
func ParseLenient(text string) (*Object, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, &ExtractError{Message: "no JSON object found in text"}
	}
	text = text[start : end+1]
	text = trailingCommaObject.ReplaceAllString(text, "}")
	text = trailingCommaArray.ReplaceAllString(text, "]")

	obj, err := Parse([]byte(text))
	if err != nil {
		return nil, &ExtractError{Message: "failed to parse extracted JSON", Cause: err}
	}
	return obj, nil
}
