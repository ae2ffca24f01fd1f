package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/crimson-sun/djenbridge/internal/engine/textnorm"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// Candidate keys per semantic field, most current shape first. Dotted entries
// descend into nested objects; numeric segments index arrays.
var (
	caseNumberKeys = []string{"numero_processo", "numeroProcesso", "numeroprocessocommascara", "processo"}
	courtKeys      = []string{"siglaTribunal", "sigla_tribunal", "tribunal"}
	dateKeys       = []string{"data_disponibilizacao", "dataDisponibilizacao", "datadisponibilizacao", "data"}
	lawyerKeys     = []string{"destinatarioadvogados.0.advogado.nome", "nomeAdvogado", "nome_advogado", "advogado"}
	oabNumberKeys  = []string{"destinatarioadvogados.0.advogado.numero_oab", "numeroOab", "numero_oab", "oab"}
	oabUFKeys      = []string{"destinatarioadvogados.0.advogado.uf_oab", "ufOab", "uf_oab"}
	textKeys       = []string{"texto", "conteudo", "text"}
	categoryKeys   = []string{"tipoComunicacao", "tipo_comunicacao", "tipoDocumento", "tipo"}
	urlKeys        = []string{"link", "url"}
)

const recipientPrefix = "destinatarioadvogados.0."

// recipient returns the index of the destinatarioadvogados entry whose
// folded name equals party, or 0.
func recipient(raw model.RawNotification, party string) int {
	want := textnorm.Fold(party)
	if want == "" {
		return 0
	}
	v, _ := lookup(raw, "destinatarioadvogados")
	list, _ := v.([]any)
	for i := range list {
		name := extract(raw, []string{"destinatarioadvogados." + strconv.Itoa(i) + ".advogado.nome"}).value
		if name != "" && textnorm.Fold(name) == want {
			return i
		}
	}
	return 0
}

// recipientKeys points the destinatarioadvogados aliases at entry i.
func recipientKeys(keys []string, i int) []string {
	if i == 0 {
		return keys
	}
	out := make([]string, len(keys))
	for j, k := range keys {
		if rest, ok := strings.CutPrefix(k, recipientPrefix); ok {
			k = "destinatarioadvogados." + strconv.Itoa(i) + "." + rest
		}
		out[j] = k
	}
	return out
}

// extracted is the outcome of resolving one alias list.
type extracted struct {
	value   string // first usable scalar, trimmed
	present bool   // some alias held a non-null value
	bad     any    // first non-scalar value seen, for error reporting
}

// extract walks keys in order and returns the first non-empty scalar.
func extract(raw model.RawNotification, keys []string) extracted {
	var out extracted
	for _, k := range keys {
		v, ok := lookup(raw, k)
		if !ok || v == nil {
			continue
		}
		out.present = true
		s, scalar := scalarString(v)
		if !scalar {
			if out.bad == nil {
				out.bad = v
			}
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out.value = s
			return out
		}
	}
	return out
}

func lookup(raw model.RawNotification, path string) (any, bool) {
	if v, ok := raw[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	var cur any = map[string]any(raw)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case model.RawNotification:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// scalarString renders JSON scalars. Numbers keep their literal digits so
// large case numbers decoded as json.Number survive intact.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
