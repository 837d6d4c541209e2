package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() *ResumeData {
	pic := "data:image/png;base64,iVBORw0KGgo="
	return &ResumeData{
		FirstName: "Jane",
		LastName:  "Doe",
		JobTitle:  "Staff Engineer",
		Summary:   "Builds things that print well.",
		Contact: ContactInfo{
			Email:    "jane@example.com",
			Phone:    "+1 555 0100",
			LinkedIn: "linkedin.com/in/janedoe",
			Address:  "Berlin",
		},
		WorkExperience: []WorkExperience{
			{
				ID:               "w1",
				JobTitle:         "Engineer",
				Company:          "Acme",
				StartDate:        "2019",
				EndDate:          "2023",
				Responsibilities: []string{"Shipped the exporter", "Owned the templates"},
				Location:         "Remote",
			},
		},
		Education: []Education{
			{ID: "e1", Degree: "BSc", Institution: "TU", GraduationYear: "2018", Details: "Honours"},
		},
		Skills:         []Skill{{ID: "s1", Name: "Go", Level: 90}},
		Languages:      []Language{{ID: "l1", Name: "German", Level: 60}},
		ProfilePicture: &pic,
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data *ResumeData
	}{
		{name: "full document", data: sampleResume()},
		{name: "empty document", data: NewResumeData()},
		{name: "unicode and markup", data: &ResumeData{
			FirstName:      "Zoë",
			LastName:       "<b>O'Brien</b>",
			Summary:        "line one\nline two \"quoted\"",
			WorkExperience: []WorkExperience{{ID: "w9", Responsibilities: []string{}}},
			Education:      []Education{},
			Skills:         []Skill{{ID: "s1", Level: 0}, {ID: "s2", Level: 100}},
			Languages:      []Language{},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Serialize(tt.data)
			require.NoError(t, err)

			decoded, err := Deserialize(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.data, decoded)
		})
	}
}

func TestSerialize_UsesWireFieldNames(t *testing.T) {
	encoded, err := Serialize(sampleResume())
	require.NoError(t, err)

	for _, key := range []string{`"firstName"`, `"workExperience"`, `"graduationYear"`, `"responsibilities"`, `"profilePicture"`} {
		assert.Contains(t, encoded, key)
	}
}

func TestSerialize_Nil(t *testing.T) {
	_, err := Serialize(nil)
	assert.Error(t, err)
}

func TestDeserialize_NormalizesMissingLists(t *testing.T) {
	decoded, err := Deserialize(`{"firstName":"Jane","workExperience":[{"id":"w1"}]}`)
	require.NoError(t, err)

	assert.Equal(t, "Jane", decoded.FirstName)
	assert.NotNil(t, decoded.Education)
	assert.NotNil(t, decoded.Skills)
	assert.NotNil(t, decoded.Languages)
	assert.Equal(t, []string{}, decoded.WorkExperience[0].Responsibilities)
	assert.Nil(t, decoded.ProfilePicture)
}

func TestDeserialize_Invalid(t *testing.T) {
	for _, input := range []string{"", "  ", "null", `"text"`, "not json", `{"firstName": 42}`, `[1,2]`} {
		_, err := Deserialize(input)
		require.Error(t, err, "input %q", input)
		var decodeErr *DeserializeError
		assert.ErrorAs(t, err, &decodeErr)
	}
}

func TestDeserialize_RejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"duplicate skill id", `{"skills":[{"id":"s1","name":"Go","level":80},{"id":"s1","name":"Rust","level":70}]}`},
		{"duplicate work id", `{"workExperience":[{"id":"w1"},{"id":"w1"}]}`},
		{"skill level above range", `{"skills":[{"id":"a","level":500}]}`},
		{"language level below range", `{"languages":[{"id":"l1","level":-1}]}`},
		{"missing education id", `{"education":[{"institution":"MIT"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize(tt.input)
			var decodeErr *DeserializeError
			require.ErrorAs(t, err, &decodeErr)
		})
	}

	_, err := Deserialize(`{"skills":[{"id":"s1"},{"id":"s1"}]}`)
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "skills", dup.Section)
	assert.Equal(t, "s1", dup.ID)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, sampleResume().Validate())
	})

	t.Run("skill level above range", func(t *testing.T) {
		d := sampleResume()
		d.Skills[0].Level = 101
		assert.Error(t, d.Validate())
	})

	t.Run("language level below range", func(t *testing.T) {
		d := sampleResume()
		d.Languages[0].Level = -1
		assert.Error(t, d.Validate())
	})

	t.Run("missing id", func(t *testing.T) {
		d := sampleResume()
		d.Education[0].ID = ""
		assert.Error(t, d.Validate())
	})

	t.Run("duplicate id", func(t *testing.T) {
		d := sampleResume()
		d.WorkExperience = append(d.WorkExperience, WorkExperience{ID: "w1"})
		err := d.Validate()
		var dupErr *DuplicateIDError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "workExperience", dupErr.Section)
		assert.Equal(t, "w1", dupErr.ID)
	})
}

func TestClone_IsDeep(t *testing.T) {
	original := sampleResume()
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.WorkExperience[0].Responsibilities[0] = "changed"
	clone.Skills[0].Name = "Rust"
	*clone.ProfilePicture = "other"

	assert.Equal(t, "Shipped the exporter", original.WorkExperience[0].Responsibilities[0])
	assert.Equal(t, "Go", original.Skills[0].Name)
	assert.NotEqual(t, "other", *original.ProfilePicture)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", (&ResumeData{FirstName: "Jane", LastName: "Doe"}).FullName())
	assert.Equal(t, "Jane", (&ResumeData{FirstName: "Jane"}).FullName())
	assert.Equal(t, "Doe", (&ResumeData{LastName: "Doe"}).FullName())
	assert.Equal(t, "", (&ResumeData{}).FullName())
}
