package marc

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FormLeader is the leader used for records built from a Form.
const FormLeader = "#####ntcaa22######u#4500"

// Form holds the hand-entered fields of a manuscript record.
type Form struct {
	ControlNumber string `yaml:"f001"`
	Language      string `yaml:"lang008"`
	StartYear     string `yaml:"start_year"`
	EndYear       string `yaml:"end_year"`
	LanguageCode  string `yaml:"f041"`
	Author        string `yaml:"f100"`
	Title         string `yaml:"f245"`
	Summary       string `yaml:"f520"`
	Biography     string `yaml:"f545"`
	Subject       string `yaml:"f650"`
	Series        string `yaml:"f830"`
}

// Validate reports the first missing required field by its form key.
func (f Form) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"f001", f.ControlNumber},
		{"lang008", f.Language},
		{"start_year", f.StartYear},
		{"end_year", f.EndYear},
		{"f245", f.Title},
		{"f650", f.Subject},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return eris.Errorf("marc: missing required field: %s", r.key)
		}
	}
	return nil
}

// Field008 assembles the fixed-length data elements for a single-item
// manuscript spanning StartYear to EndYear.
func (f Form) Field008() string {
	return "######s" + f.StartYear + f.EndYear + "xx######r#####000#0#" + f.Language + "#d"
}

// Build validates the form and produces its record.
func (f Form) Build() (Record, error) {
	f = f.trimmed()
	if err := f.Validate(); err != nil {
		return Record{}, err
	}

	rec := Record{Leader: FormLeader}
	rec.AddControl("001", f.ControlNumber)
	rec.AddControl("008", f.Field008())
	rec.AddData("040", " ", " ", "a", "ANS")
	if f.LanguageCode != "" {
		rec.AddData("041", "0", " ", "a", f.LanguageCode)
	}
	if f.Author != "" {
		rec.AddData("100", "1", " ", "a", f.Author, "e", "author")
	}
	rec.AddData("245", "1", "0", "a", f.Title)
	if f.Summary != "" {
		rec.AddData("520", " ", " ", "a", f.Summary)
	}
	if f.Biography != "" {
		rec.AddData("545", " ", " ", "a", f.Biography)
	}
	rec.AddData("650", " ", "0", "a", f.Subject)
	if f.Series != "" {
		rec.AddData("830", " ", "0", "a", f.Series)
	}
	return rec, nil
}

func (f Form) trimmed() Form {
	for _, p := range []*string{
		&f.ControlNumber, &f.Language, &f.StartYear, &f.EndYear, &f.LanguageCode,
		&f.Author, &f.Title, &f.Summary, &f.Biography, &f.Subject, &f.Series,
	} {
		*p = strings.TrimSpace(*p)
	}
	return f
}

// ParseForms decodes one or more YAML documents, each a Form.
func ParseForms(r io.Reader) ([]Form, error) {
	dec := yaml.NewDecoder(r)
	var forms []Form
	for {
		var f Form
		err := dec.Decode(&f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "marc: decode form")
		}
		forms = append(forms, f)
	}
	if len(forms) == 0 {
		return nil, eris.New("marc: no forms in input")
	}
	return forms, nil
}

// LoadForms reads forms from a YAML file.
func LoadForms(path string) ([]Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "marc: open form file")
	}
	defer f.Close() //nolint:errcheck
	return ParseForms(f)
}
