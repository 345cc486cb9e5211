package models

// SectionType categorizes a section by its delivery format.
type SectionType string

const (
	TypeLecture          SectionType = "Lecture"
	TypeSeminar          SectionType = "Seminar"
	TypeRecitation       SectionType = "Recitation"
	TypeDiscussion       SectionType = "Discussion"
	TypeLab              SectionType = "Lab"
	TypeInternship       SectionType = "Internship"
	TypeProject          SectionType = "Project"
	TypeIndependentStudy SectionType = "IndependentStudy"
	TypeTutorial         SectionType = "Tutorial"
	TypeOther            SectionType = "Other"
)

// sectionTypeByCode maps the letter code trailing a section number
// ("1L", "2S", "3Lb") to its type.
var sectionTypeByCode = map[string]SectionType{
	"L":  TypeLecture,
	"S":  TypeSeminar,
	"R":  TypeRecitation,
	"D":  TypeDiscussion,
	"B":  TypeLab,
	"I":  TypeInternship,
	"P":  TypeProject,
	"IS": TypeIndependentStudy,
	"T":  TypeTutorial,
}

// SectionTypeFromCode resolves a single-letter (or "IS") type code to a
// SectionType. Unknown codes map to TypeOther.
func SectionTypeFromCode(code string) SectionType {
	if t, ok := sectionTypeByCode[code]; ok {
		return t
	}
	return TypeOther
}

// ParseSectionType accepts either a type code or a full type name, for legacy
// snapshot files that stored the type in both forms over time.
func ParseSectionType(value string) SectionType {
	if t, ok := sectionTypeByCode[value]; ok {
		return t
	}
	switch SectionType(value) {
	case TypeLecture, TypeSeminar, TypeRecitation, TypeDiscussion, TypeLab,
		TypeInternship, TypeProject, TypeIndependentStudy, TypeTutorial:
		return SectionType(value)
	}
	return TypeOther
}
