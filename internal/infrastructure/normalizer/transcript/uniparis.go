package transcript

import (
	"errors"
	"strings"

	"github.com/beevik/etree"

	"github.com/mverdier/admission-verifier/internal/core/domain"
	"github.com/mverdier/admission-verifier/internal/core/gradescale"
)

// The Paris export wraps every transcript in <releves>, one <releve> per
// student, with identity under <etudiant> and grades under <semestres>. The
// student number cell carries a display prefix that must be stripped.
const uniparisNumberPrefix = "N° étudiant :"

type UniParisPlugin struct{}

func NewUniParisPlugin() *UniParisPlugin {
	return &UniParisPlugin{}
}

func (p *UniParisPlugin) Name() string { return "uniparis" }

func (p *UniParisPlugin) CanNormalize(raw []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return false
	}
	root := doc.Root()
	return root != nil && root.Tag == "releves"
}

func (p *UniParisPlugin) Normalize(raw []byte) ([]domain.StudentRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, domain.WrapError(domain.ErrParsing, "uniparis normalize", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "releves" {
		return nil, domain.WrapError(domain.ErrInvalidXML, "uniparis normalize", errors.New("root element is not releves"))
	}

	var students []domain.StudentRecord
	for _, releve := range root.SelectElements("releve") {
		student := p.extractStudent(releve)
		if !student.Complete() {
			continue
		}
		students = append(students, student)
	}
	if len(students) == 0 {
		return nil, domain.WrapError(domain.ErrMissingRequired, "uniparis normalize", errors.New("zero usable students"))
	}
	return students, nil
}

func (p *UniParisPlugin) extractStudent(releve *etree.Element) domain.StudentRecord {
	var student domain.StudentRecord
	if etudiant := releve.SelectElement("etudiant"); etudiant != nil {
		student.Name = elementText(etudiant, "nom")
		student.DateOfBirth = elementText(etudiant, "date_naissance")
		number := elementText(etudiant, "numero")
		number = strings.TrimSpace(strings.TrimPrefix(number, uniparisNumberPrefix))
		student.StudentNumber = number
	}
	if semestres := releve.SelectElement("semestres"); semestres != nil {
		for _, semestre := range semestres.SelectElements("semestre") {
			name := elementText(semestre, "libelle")
			grade, ok := gradescale.Normalize(elementText(semestre, "moyenne"))
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

func elementText(parent *etree.Element, tag string) string {
	el := parent.SelectElement(tag)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
