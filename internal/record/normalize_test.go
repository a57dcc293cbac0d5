package record

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/types"
)

func normalizeJSON(data []byte) (*types.ResumeRecord, error) {
	obj, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Normalize(obj)
}

func TestNormalize_EmptyRecordUsesHeaderDefaults(t *testing.T) {
	var subs []Substitution
	n := Normalizer{OnDefault: func(s Substitution) { subs = append(subs, s) }}

	rec, err := n.Normalize(NewObject())
	require.NoError(t, err)

	assert.Equal(t, DefaultName, rec.Name)
	assert.Equal(t, DefaultLocation, rec.Location)
	assert.Equal(t, DefaultEmail, rec.Email)
	assert.Equal(t, DefaultPhone, rec.Phone)
	assert.Empty(t, rec.Summary)
	assert.Empty(t, rec.Experience)
	assert.Empty(t, rec.Skills)
	assert.Empty(t, rec.Languages)
	assert.Equal(t, []Substitution{
		{Path: "Name", Default: DefaultName},
		{Path: "Location", Default: DefaultLocation},
		{Path: "Email", Default: DefaultEmail},
		{Path: "Phone", Default: DefaultPhone},
	}, subs)
}

func TestNormalize_NilObjectIsEmpty(t *testing.T) {
	rec, err := Normalize(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, rec.Name)
}

func TestNormalize_ExperienceAliasPrecedence(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{
		"Experience": [
			{"Job Role": "Backend Engineer", "job role": "ignored", "company name": "Acme"},
			{"JobRole": "SRE", "Job Role": "ignored"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, rec.Experience, 2)

	assert.Equal(t, "Backend Engineer", rec.Experience[0].JobRole)
	assert.Equal(t, "Acme", rec.Experience[0].CompanyName)
	assert.Equal(t, "SRE", rec.Experience[1].JobRole)
	assert.Equal(t, "Tech Company", rec.Experience[1].CompanyName)
}

func TestNormalize_EmptyDurationIsAbsent(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{
		"Education": [{"Degree": "BSc", "DurationOrYear": "", "Duration": "2018-2022"}],
		"Experience": [{"JobRole": "Dev", "Duration": "   "}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "2018-2022", rec.Education[0].Duration)
	assert.Equal(t, "", rec.Experience[0].Duration)
}

func TestNormalize_EmptyStringKeptForOrdinaryFields(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{"Name": "", "name": "fallback"}`))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Name)
}

func TestNormalize_NullFallsThroughToNextAlias(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{"Name": null, "name": "Jane Roe"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", rec.Name)
}

func TestNormalize_ScalarCoercion(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{
		"Phone": 5551234,
		"Education": [{"CGPA": 3.8}],
		"Projects": [{"Title": "CLI", "Tools": "Go"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "5551234", rec.Phone)
	assert.Equal(t, "3.8", rec.Education[0].CGPA)
	assert.Equal(t, []string{"Go"}, rec.Projects[0].Tools)
}

func TestNormalize_SkillsKeepOrder(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{"Skills": {"Languages": ["Go", "Rust"], "Cloud": "AWS", "Other": null}}`))
	require.NoError(t, err)

	want := types.SkillSet{
		{Category: "Languages", Values: []string{"Go", "Rust"}},
		{Category: "Cloud", Values: []string{"AWS"}},
		{Category: "Other"},
	}
	if diff := cmp.Diff(want, rec.Skills); diff != "" {
		t.Errorf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ResponsibilitiesAlias(t *testing.T) {
	rec, err := normalizeJSON([]byte(`{"Experience": [{"what did user do": "Built things"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Built things"}, rec.Experience[0].Achievements())
}

func TestNormalize_EntryDefaultsReported(t *testing.T) {
	var subs []Substitution
	n := Normalizer{OnDefault: func(s Substitution) { subs = append(subs, s) }}

	_, err := n.Normalize(NewObject(
		"Name", "Jane", "Location", "Berlin", "Email", "j@example.com", "Phone", "1",
		"Certificates", []any{NewObject()},
	))
	require.NoError(t, err)
	assert.Equal(t, []Substitution{
		{Path: "Certificates[0].Name", Default: "Certificate Name"},
		{Path: "Certificates[0].IssuingOrganization", Default: "Issuing Organization"},
	}, subs)
}

func TestNormalize_MalformedFields(t *testing.T) {
	_, err := normalizeJSON([]byte(`{
		"Name": {"first": "Jane"},
		"Experience": "not a list",
		"Projects": [42],
		"Skills": ["Go"]
	}`))
	require.Error(t, err)

	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))

	paths := make([]string, len(malformed.Fields))
	for i, f := range malformed.Fields {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"Name", "Experience", "Projects[0]", "Skills"}, paths)
}

func TestParse_NotObject(t *testing.T) {
	_, err := Parse([]byte(`["a", "b"]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotObject))
	assert.Contains(t, err.Error(), "array")
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"Name": `))
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_TrailingData(t *testing.T) {
	_, err := Parse([]byte(`{} {}`))
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	obj, err := Parse([]byte(`{"b": 1, "a": 2, "c": {"z": 1, "y": 2}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())

	nested, ok := obj.Get("c")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "y"}, nested.(*Object).Keys())
}

func TestFromMap_SortsKeys(t *testing.T) {
	obj := FromMap(map[string]any{"b": "x", "a": map[string]any{"d": 1, "c": 2}})
	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	nested, _ := obj.Get("a")
	assert.Equal(t, []string{"c", "d"}, nested.(*Object).Keys())
}

func TestParseLenient_TrailingCommasAndProse(t *testing.T) {
	obj, err := ParseLenient("Here you go:\n{\"Name\": \"Jane\", \"Summary\": [\"a\", \"b\",],}\nThanks!")
	require.NoError(t, err)

	rec, err := Normalize(obj)
	require.NoError(t, err)
	assert.Equal(t, "Jane", rec.Name)
	assert.Equal(t, []string{"a", "b"}, rec.Summary)
}

func TestParseLenient_NoObject(t *testing.T) {
	_, err := ParseLenient("I could not read that resume.")
	var extractErr *ExtractError
	assert.True(t, errors.As(err, &extractErr))
}

func TestObject_MarshalJSONKeepsOrder(t *testing.T) {
	obj, err := Parse([]byte(`{"Zeta": 1, "Alpha": {"b": [true, null], "a": "x"}}`))
	require.NoError(t, err)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":1,"Alpha":{"b":[true,null],"a":"x"}}`, string(out))
}
