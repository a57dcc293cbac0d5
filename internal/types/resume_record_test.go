package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperienceEntry_Achievements_TripleOrder(t *testing.T) {
	entry := ExperienceEntry{
		WhatHeDid:  []string{"A", "B"},
		HowHeDidIt: []string{"C"},
		ImpactMade: []string{},
	}

	assert.Equal(t, []string{"A", "B", "C"}, entry.Achievements())
}

func TestExperienceEntry_Achievements_TripleWinsOverResponsibilities(t *testing.T) {
	entry := ExperienceEntry{
		ImpactMade:       []string{"Cut latency 40%"},
		Responsibilities: "Did X",
	}

	assert.Equal(t, []string{"Cut latency 40%"}, entry.Achievements())
}

func TestExperienceEntry_Achievements_ResponsibilitiesFallback(t *testing.T) {
	entry := ExperienceEntry{Responsibilities: "Did X"}

	assert.Equal(t, []string{"Did X"}, entry.Achievements())
}

func TestExperienceEntry_Achievements_Empty(t *testing.T) {
	assert.Empty(t, ExperienceEntry{}.Achievements())
}

func TestSkillSet_MarshalJSON_KeepsOrder(t *testing.T) {
	skills := SkillSet{
		{Category: "Languages", Values: []string{"Go", "Python"}},
		{Category: "Cloud", Values: []string{"AWS"}},
		{Category: "Empty"},
	}

	data, err := json.Marshal(skills)
	require.NoError(t, err)
	assert.Equal(t, `{"Languages":["Go","Python"],"Cloud":["AWS"],"Empty":[]}`, string(data))
}

func TestSkillSet_JSONRoundTripKeepsOrder(t *testing.T) {
	rec := ResumeRecord{
		Name: "Jane",
		Skills: SkillSet{
			{Category: "Zeta", Values: []string{"Go"}},
			{Category: "Alpha", Values: []string{"AWS", "GCP"}},
			{Category: "Empty", Values: []string{}},
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded ResumeRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec.Skills, decoded.Skills)
}

func TestSkillSet_UnmarshalJSON(t *testing.T) {
	var s SkillSet
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Nil(t, s)

	assert.Error(t, json.Unmarshal([]byte(`["Go"]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"Languages":"Go"}`), &s))
}
