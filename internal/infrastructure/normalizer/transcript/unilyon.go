package transcript

import (
	"errors"

	"github.com/beevik/etree"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/gradescale"
)

// The Lyon export uses <export_notes> with students under <etudiants> and
// period results under <resultats>. Grades arrive on a 200-point scale and
// are rescaled during normalization.
type UniLyonPlugin struct{}

func NewUniLyonPlugin() *UniLyonPlugin {
	return &UniLyonPlugin{}
}

func (p *UniLyonPlugin) Name() string { return "unilyon" }

func (p *UniLyonPlugin) CanNormalize(raw []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return false
	}
	root := doc.Root()
	return root != nil && root.Tag == "export_notes"
}

func (p *UniLyonPlugin) Normalize(raw []byte) ([]domain.StudentRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, domain.WrapError(domain.ErrParsing, "unilyon normalize", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "export_notes" {
		return nil, domain.WrapError(domain.ErrInvalidXML, "unilyon normalize", errors.New("root element is not export_notes"))
	}
	etudiants := root.SelectElement("etudiants")
	if etudiants == nil {
		return nil, domain.WrapError(domain.ErrInvalidXML, "unilyon normalize", errors.New("etudiants element missing"))
	}

	var students []domain.StudentRecord
	for _, etudiant := range etudiants.SelectElements("etudiant") {
		student := p.extractStudent(etudiant)
		if !student.Complete() {
			continue
		}
		students = append(students, student)
	}
	if len(students) == 0 {
		return nil, domain.WrapError(domain.ErrMissingRequired, "unilyon normalize", errors.New("zero usable students"))
	}
	return students, nil
}

func (p *UniLyonPlugin) extractStudent(etudiant *etree.Element) domain.StudentRecord {
	student := domain.StudentRecord{
		Name:          elementText(etudiant, "nom_complet"),
		DateOfBirth:   elementText(etudiant, "naissance"),
		StudentNumber: elementText(etudiant, "matricule"),
	}
	if resultats := etudiant.SelectElement("resultats"); resultats != nil {
		for _, resultat := range resultats.SelectElements("resultat") {
			name := elementText(resultat, "periode")
			grade, ok := gradescale.Normalize(elementText(resultat, "note"))
			if name == "" || !ok {
				continue
			}
			student.SemesterResults = append(student.SemesterResults, domain.SemesterResult{
				SemesterName: name,
				Grade:        grade,
			})
		}
	}
	return student
}
