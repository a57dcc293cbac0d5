// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResumeRecord is the canonical, normalized form of an extracted resume.
// Every alias and default has already been resolved; formatters read it as-is.
type ResumeRecord struct {
	Name      string `json:"Name"`
	Location  string `json:"Location"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	LinkedIn  string `json:"LinkedIn,omitempty"`
	Portfolio string `json:"Portfolio,omitempty"`
	Objective string `json:"Objective,omitempty"`

	Summary      []string           `json:"Summary,omitempty"`
	Education    []EducationEntry   `json:"Education,omitempty"`
	Experience   []ExperienceEntry  `json:"Experience,omitempty"`
	Projects     []ProjectEntry     `json:"Projects,omitempty"`
	Skills       SkillSet           `json:"Skills,omitempty"`
	Certificates []CertificateEntry `json:"Certificates,omitempty"`
	Languages    string             `json:"Languages,omitempty"`
}

// EducationEntry is one degree. Duration is empty when no duration should be shown.
// CGPA wins over Percentage when both are present.
type EducationEntry struct {
	Degree                  string   `json:"Degree"`
	University              string   `json:"University"`
	Location                string   `json:"Location,omitempty"`
	Duration                string   `json:"Duration,omitempty"`
	CGPA                    string   `json:"CGPA,omitempty"`
	Percentage              string   `json:"Percentage,omitempty"`
	RelevantCoursework      []string `json:"RelevantCoursework,omitempty"`
	HonorsAndQualifications []string `json:"HonorsAndQualifications,omitempty"`
}

// ExperienceEntry is one role. Achievements come either from the WhatHeDid/HowHeDidIt/ImpactMade
// triple or, when that yields nothing, from the free-text Responsibilities.
type ExperienceEntry struct {
	JobRole          string   `json:"JobRole"`
	CompanyName      string   `json:"CompanyName"`
	Duration         string   `json:"Duration,omitempty"`
	Location         string   `json:"Location,omitempty"`
	WhatHeDid        []string `json:"WhatHeDid,omitempty"`
	HowHeDidIt       []string `json:"HowHeDidIt,omitempty"`
	ImpactMade       []string `json:"ImpactMade,omitempty"`
	Responsibilities string   `json:"Responsibilities,omitempty"`
}

// Achievements returns the bullet texts for the entry in render order.
func (e ExperienceEntry) Achievements() []string {
	var out []string
	for _, group := range [][]string{e.WhatHeDid, e.HowHeDidIt, e.ImpactMade} {
		for _, item := range group {
			if item != "" {
				out = append(out, item)
			}
		}
	}
	if len(out) == 0 && e.Responsibilities != "" {
		out = append(out, e.Responsibilities)
	}
	return out
}

// ProjectEntry is one project. Tools keeps the upstream order whether it arrived
// as a list or as a single string.
type ProjectEntry struct {
	Title       string   `json:"Title"`
	Description string   `json:"Description,omitempty"`
	Tools       []string `json:"Tools,omitempty"`
	Link        string   `json:"Link,omitempty"`
}

// CertificateEntry is one certification.
type CertificateEntry struct {
	Name                string `json:"Name"`
	IssuingOrganization string `json:"IssuingOrganization"`
	Date                string `json:"Date,omitempty"`
	ExpiryDate          string `json:"ExpiryDate,omitempty"`
	CertificateNumber   string `json:"CertificateNumber,omitempty"`
	VerificationURL     string `json:"VerificationURL,omitempty"`
	AdditionalDetails   string `json:"AdditionalDetails,omitempty"`
}

// SkillCategory is a named group of skills.
type SkillCategory struct {
	Category string
	Values   []string
}

// SkillSet preserves the category order of the upstream mapping.
type SkillSet []SkillCategory

// MarshalJSON encodes the set as an object whose keys keep insertion order.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		values := c.Values
		if values == nil {
			values = []string{}
		}
		val, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the object form written by MarshalJSON, keeping key order.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skills: expected object, got %v", tok)
	}

	set := SkillSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var values []string
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("skills: category %q: %w", key, err)
		}
		set = append(set, SkillCategory{Category: key, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = set
	return nil
}
