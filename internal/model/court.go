package model

import "strings"

// Court is an entry of the supported-court catalogue.
type Court struct {
	Code string `json:"code"`
	Name string `json:"name"`
	// DocumentBase is prefixed to the case number to build a source link
	// when upstream omits one.
	DocumentBase string `json:"-"`
}

// defaultDocumentBase serves courts without a dedicated portal.
const defaultDocumentBase = "https://djen.jus.br/"

var courts = []Court{
	{Code: "TJMG", Name: "Tribunal de Justiça de Minas Gerais", DocumentBase: "https://www.tjmg.jus.br/djen/"},
	{Code: "TJSP", Name: "Tribunal de Justiça de São Paulo", DocumentBase: "https://www.tjsp.jus.br/djen/"},
	{Code: "TJRJ", Name: "Tribunal de Justiça do Rio de Janeiro"},
	{Code: "TRT3", Name: "Tribunal Regional do Trabalho 3ª Região"},
}

// Courts returns the supported-court catalogue.
func Courts() []Court {
	return append([]Court(nil), courts...)
}

// DocumentURL builds the fallback source link for a case in the given court.
func DocumentURL(court, caseNumber string) string {
	if caseNumber == "" {
		return ""
	}
	for _, c := range courts {
		if strings.EqualFold(c.Code, court) && c.DocumentBase != "" {
			return c.DocumentBase + caseNumber
		}
	}
	return defaultDocumentBase + caseNumber
}
