// Package marc builds MARCXML catalogue records, either from a filled-in
// form or by harvesting descriptive metadata from an HTML page.
package marc

import (
	"encoding/xml"

	"github.com/rotisserie/eris"
)

// Namespace is the MARC 21 slim schema namespace.
const Namespace = "http://www.loc.gov/MARC21/slim"

// Collection is the MARCXML document root.
type Collection struct {
	XMLName xml.Name `xml:"collection"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Records []Record `xml:"record"`
}

// Record is a single bibliographic record.
type Record struct {
	Leader        string         `xml:"leader"`
	ControlFields []ControlField `xml:"controlfield"`
	DataFields    []DataField    `xml:"datafield"`
}

// ControlField is a fixed-length field (tags 001-009).
type ControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

// DataField is a variable field with indicators and subfields.
type DataField struct {
	Tag       string     `xml:"tag,attr"`
	Ind1      string     `xml:"ind1,attr"`
	Ind2      string     `xml:"ind2,attr"`
	Subfields []Subfield `xml:"subfield"`
}

// Subfield is one coded value within a DataField.
type Subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// AddControl appends a control field.
func (r *Record) AddControl(tag, value string) {
	r.ControlFields = append(r.ControlFields, ControlField{Tag: tag, Value: value})
}

// AddData appends a data field. Subfields are given as code/value pairs;
// pairs with an empty value are skipped.
func (r *Record) AddData(tag, ind1, ind2 string, codeValues ...string) {
	df := DataField{Tag: tag, Ind1: ind1, Ind2: ind2}
	for i := 0; i+1 < len(codeValues); i += 2 {
		if codeValues[i+1] == "" {
			continue
		}
		df.Subfields = append(df.Subfields, Subfield{Code: codeValues[i], Value: codeValues[i+1]})
	}
	r.DataFields = append(r.DataFields, df)
}

// Control returns the value of the first control field with tag.
func (r *Record) Control(tag string) (string, bool) {
	for _, cf := range r.ControlFields {
		if cf.Tag == tag {
			return cf.Value, true
		}
	}
	return "", false
}

// Data returns every data field with tag, in record order.
func (r *Record) Data(tag string) []DataField {
	var out []DataField
	for _, df := range r.DataFields {
		if df.Tag == tag {
			out = append(out, df)
		}
	}
	return out
}

// Subfield returns the first value for code.
func (d DataField) Subfield(code string) string {
	for _, sf := range d.Subfields {
		if sf.Code == code {
			return sf.Value
		}
	}
	return ""
}

// Marshal renders records as an indented MARCXML document with an XML
// declaration.
func Marshal(records ...Record) ([]byte, error) {
	out, err := xml.MarshalIndent(Collection{Xmlns: Namespace, Records: records}, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "marc: marshal xml")
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
