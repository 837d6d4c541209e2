package store

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/jonathan/cvmaker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func janeDoe() *types.ResumeData {
	d := types.NewResumeData()
	d.FirstName = "Jane"
	d.LastName = "Doe"
	d.Contact = types.ContactInfo{Email: "jane@example.com", Phone: "555"}
	d.WorkExperience = []types.WorkExperience{
		{ID: "w1", JobTitle: "Engineer", Company: "Acme", Responsibilities: []string{"Built things"}},
	}
	return d
}

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNew_EmptyDocument(t *testing.T) {
	s := New()
	snap := s.Snapshot()

	assert.Equal(t, types.NewResumeData(), snap.Data)
	assert.Equal(t, types.TemplateUI1, snap.Template)
	assert.Equal(t, uint64(0), snap.Version)
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	s := New()
	s.SetFirstName("Someone")
	s.AddSkill()

	s.Load(janeDoe())

	data := s.Data()
	assert.Equal(t, janeDoe(), data)
	assert.Empty(t, data.Skills, "load must not merge with previous content")
}

func TestLoad_NilLoadsEmpty(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI3))
	s.Load(nil)
	assert.Equal(t, types.NewResumeData(), s.Data())
	assert.Equal(t, types.TemplateUI3, s.Template(), "load does not touch the template")
}

func TestLoad_IsolatedFromCaller(t *testing.T) {
	input := janeDoe()
	s := New()
	s.Load(input)

	input.FirstName = "Mutated"
	assert.Equal(t, "Jane", s.Data().FirstName)

	out := s.Data()
	out.WorkExperience[0].Company = "Mutated"
	assert.Equal(t, "Acme", s.Data().WorkExperience[0].Company)
}

func TestSetTemplate(t *testing.T) {
	s := New()
	for _, v := range types.Variants() {
		s.SetTemplate(v)
		assert.Equal(t, v, s.Template())
	}

	s.SetTemplate(types.TemplateVariant("ui9"))
	assert.Equal(t, types.TemplateUI1, s.Template())
}

func TestSetField(t *testing.T) {
	s := New()
	require.NoError(t, s.SetField("firstName", "Jane"))
	require.NoError(t, s.SetField("lastName", "Doe"))
	require.NoError(t, s.SetField("jobTitle", "Engineer"))
	require.NoError(t, s.SetField("summary", "Hello"))

	d := s.Data()
	assert.Equal(t, "Jane", d.FirstName)
	assert.Equal(t, "Doe", d.LastName)
	assert.Equal(t, "Engineer", d.JobTitle)
	assert.Equal(t, "Hello", d.Summary)

	var fieldErr *UnknownFieldError
	assert.ErrorAs(t, s.SetField("nickname", "JD"), &fieldErr)
}

func TestSetContact(t *testing.T) {
	s := New()
	require.NoError(t, s.SetContact("email", "jane@example.com"))
	require.NoError(t, s.SetContact("github", "janedoe"))
	assert.Equal(t, "jane@example.com", s.Data().Contact.Email)
	assert.Equal(t, "janedoe", s.Data().Contact.GitHub)

	assert.Error(t, s.SetContact("fax", "123"))
}

func TestRemoveEntry_AbsentIDIsNoop(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI2))

	s.RemoveEntry(SectionWorkExperience, "w1")
	assert.Empty(t, s.Data().WorkExperience)

	s.RemoveEntry(SectionWorkExperience, "w1")
	assert.Empty(t, s.Data().WorkExperience)
}

func TestRemoveEntry_OnlyMatchingID(t *testing.T) {
	s := New(WithIDGenerator(sequentialIDs()))
	a := s.AddSkill()
	b := s.AddSkill()
	c := s.AddSkill()

	s.RemoveEntry(SectionSkills, b)

	var ids []string
	for _, sk := range s.Data().Skills {
		ids = append(ids, sk.ID)
	}
	assert.Equal(t, []string{a, c}, ids)
}

func TestAddEntry_DefaultsPerSection(t *testing.T) {
	s := New()
	s.AddWorkExperience()
	s.AddEducation()
	s.AddSkill()
	s.AddLanguage()

	d := s.Data()
	require.Len(t, d.WorkExperience, 1)
	require.Len(t, d.Education, 1)
	require.Len(t, d.Skills, 1)
	require.Len(t, d.Languages, 1)
	assert.NotNil(t, d.WorkExperience[0].Responsibilities)
	assert.Equal(t, DefaultSkillLevel, d.Skills[0].Level)
	assert.Equal(t, DefaultSkillLevel, d.Languages[0].Level)

	_, err := s.AddEntry(Section("projects"))
	assert.Error(t, err)
}

func TestIDs_NeverReusedAfterRemoval(t *testing.T) {
	// Generator that keeps offering the same id until it is rejected.
	offered := []string{"x", "x", "x", "y", "y", "z"}
	i := 0
	s := New(WithIDGenerator(func() string {
		id := offered[i]
		i++
		return id
	}))

	first := s.AddSkill()
	s.RemoveEntry(SectionSkills, first)
	second := s.AddSkill()
	third := s.AddLanguage()

	assert.Equal(t, "x", first)
	assert.Equal(t, "y", second)
	assert.Equal(t, "z", third)
}

func TestIDs_LoadedIDsAreReserved(t *testing.T) {
	offered := []string{"w1", "w2"}
	i := 0
	s := New(WithIDGenerator(func() string {
		id := offered[i]
		i++
		return id
	}))
	s.Load(janeDoe())
	s.RemoveEntry(SectionWorkExperience, "w1")

	assert.Equal(t, "w2", s.AddWorkExperience())
}

func TestIDs_UniqueUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()

	for step := 0; step < 500; step++ {
		section := Sections()[rng.Intn(len(Sections()))]
		d := s.Data()
		ids := idsIn(d, section)
		if len(ids) > 0 && rng.Intn(3) == 0 {
			s.RemoveEntry(section, ids[rng.Intn(len(ids))])
		} else {
			_, err := s.AddEntry(section)
			require.NoError(t, err)
		}
	}

	d := s.Data()
	for _, section := range Sections() {
		seen := map[string]bool{}
		for _, id := range idsIn(d, section) {
			assert.False(t, seen[id], "duplicate id %s in %s", id, section)
			seen[id] = true
		}
	}
	assert.NoError(t, d.Validate())
}

func TestUpdateEntry(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI1))
	skillID := s.AddSkill()
	eduID := s.AddEducation()

	require.NoError(t, s.UpdateEntry(SectionWorkExperience, "w1", "company", "Globex"))
	require.NoError(t, s.UpdateEntry(SectionWorkExperience, "w1", "responsibilities", []string{"a", "b"}))
	require.NoError(t, s.UpdateEntry(SectionEducation, eduID, "graduationYear", "2012"))
	require.NoError(t, s.UpdateEntry(SectionSkills, skillID, "name", "Go"))
	require.NoError(t, s.UpdateEntry(SectionSkills, skillID, "level", 120))

	d := s.Data()
	assert.Equal(t, "Globex", d.WorkExperience[0].Company)
	assert.Equal(t, []string{"a", "b"}, d.WorkExperience[0].Responsibilities)
	assert.Equal(t, "2012", d.Education[0].GraduationYear)
	assert.Equal(t, "Go", d.Skills[0].Name)
	assert.Equal(t, 100, d.Skills[0].Level, "level is clamped")

	require.NoError(t, s.UpdateEntry(SectionSkills, skillID, "level", "-5"))
	assert.Equal(t, 0, s.Data().Skills[0].Level)
}

func TestUpdateEntry_LevelExtremes(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"huge float", 1e20, 100},
		{"huge negative float", -1e20, 0},
		{"infinity", math.Inf(1), 100},
		{"fractional", 72.9, 72},
		{"huge string", "1e20", 100},
		{"max int", math.MaxInt, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithInitial(janeDoe(), types.TemplateUI1))
			skillID := s.AddSkill()

			require.NoError(t, s.UpdateEntry(SectionSkills, skillID, "level", tt.value))
			assert.Equal(t, tt.want, s.Data().Skills[0].Level)
		})
	}

	s := New(WithInitial(janeDoe(), types.TemplateUI1))
	skillID := s.AddSkill()
	var fieldErr *FieldError
	assert.ErrorAs(t, s.UpdateEntry(SectionSkills, skillID, "level", math.NaN()), &fieldErr)
}

func TestUpdateEntry_AbsentIDIsNoop(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI1))
	before := s.Snapshot()

	assert.NoError(t, s.UpdateEntry(SectionWorkExperience, "missing", "company", "Globex"))
	assert.NoError(t, s.UpdateEntry(SectionWorkExperience, "missing", "bogus", 42))

	after := s.Snapshot()
	assert.Equal(t, before, after)
}

func TestUpdateEntry_BadFieldOrType(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI1))
	langID := s.AddLanguage()

	var fieldErr *FieldError
	assert.ErrorAs(t, s.UpdateEntry(SectionWorkExperience, "w1", "salary", "1"), &fieldErr)
	assert.ErrorAs(t, s.UpdateEntry(SectionWorkExperience, "w1", "company", 7), &fieldErr)
	assert.ErrorAs(t, s.UpdateEntry(SectionLanguages, langID, "level", "fluent"), &fieldErr)
	assert.Equal(t, "Acme", s.Data().WorkExperience[0].Company)
}

func TestResponsibilities(t *testing.T) {
	s := New(WithInitial(janeDoe(), types.TemplateUI1))

	s.AddResponsibility("w1")
	s.UpdateResponsibility("w1", 1, "Led the migration")
	assert.Equal(t, []string{"Built things", "Led the migration"}, s.Data().WorkExperience[0].Responsibilities)

	s.RemoveResponsibility("w1", 0)
	assert.Equal(t, []string{"Led the migration"}, s.Data().WorkExperience[0].Responsibilities)

	// out of range and unknown ids are ignored
	s.UpdateResponsibility("w1", 5, "nope")
	s.RemoveResponsibility("w1", -1)
	s.AddResponsibility("missing")
	assert.Equal(t, []string{"Led the migration"}, s.Data().WorkExperience[0].Responsibilities)
}

func TestProfilePicture(t *testing.T) {
	s := New()
	s.SetProfilePicture("data:image/png;base64,AAAA")
	require.NotNil(t, s.Data().ProfilePicture)
	assert.Equal(t, "data:image/png;base64,AAAA", *s.Data().ProfilePicture)

	s.RemoveProfilePicture()
	assert.Nil(t, s.Data().ProfilePicture)
}

func TestSubscribe_NotifiedSynchronously(t *testing.T) {
	s := New()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.SetFirstName("Jane")
	require.Len(t, got, 1, "listener runs before the mutation returns")
	assert.Equal(t, "Jane", got[0].Data.FirstName)
	assert.Equal(t, uint64(1), got[0].Version)

	// no-ops do not notify
	s.SetFirstName("Jane")
	s.RemoveEntry(SectionSkills, "missing")
	s.SetTemplate(types.TemplateUI1)
	assert.Len(t, got, 1)

	s.SetTemplate(types.TemplateUI4)
	require.Len(t, got, 2)
	assert.Equal(t, types.TemplateUI4, got[1].Template)

	unsubscribe()
	s.SetLastName("Doe")
	assert.Len(t, got, 2)
}

func TestSubscribe_ListenerMayReadStore(t *testing.T) {
	s := New()
	var seen string
	s.Subscribe(func(Snapshot) {
		seen = s.Data().FirstName
	})

	s.SetFirstName("Jane")
	assert.Equal(t, "Jane", seen)
}

func TestParseSection(t *testing.T) {
	for raw, want := range map[string]Section{
		"work":           SectionWorkExperience,
		"workExperience": SectionWorkExperience,
		"education":      SectionEducation,
		"skills":         SectionSkills,
		"language":       SectionLanguages,
	} {
		got, ok := ParseSection(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseSection("projects")
	assert.False(t, ok)
}

func idsIn(d *types.ResumeData, section Section) []string {
	var ids []string
	switch section {
	case SectionWorkExperience:
		for _, w := range d.WorkExperience {
			ids = append(ids, w.ID)
		}
	case SectionEducation:
		for _, e := range d.Education {
			ids = append(ids, e.ID)
		}
	case SectionSkills:
		for _, sk := range d.Skills {
			ids = append(ids, sk.ID)
		}
	case SectionLanguages:
		for _, l := range d.Languages {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
