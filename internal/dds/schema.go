package dds

import (
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

const SystemInstruction = `Você é um especialista em Segurança do Trabalho no Brasil. Sua tarefa é criar o conteúdo para um Diálogo Diário de Segurança (DDS) a partir de um tema. O conteúdo deve ser prático, objetivo e usar linguagem simples. Siga estritamente a estrutura JSON fornecida, preenchendo todos os campos. O caso real deve ser crível e ambientado no Brasil. As perguntas devem incentivar a participação. Retorne SOMENTE o objeto JSON.`

var requiredFields = []string{
	"titulo",
	"introducao",
	"caso_real",
	"pontos_chave",
	"como_prevenir",
	"perguntas_reflexao",
	"mensagem_final",
	"nr_relacionada",
}

// ReportSchema is the response schema sent with every report request.
func ReportSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"titulo":             str(fmt.Sprintf("Título chamativo para um Diálogo Diário de Segurança (DDS) com no máximo %d caracteres.", MaxTitleLength)),
			"introducao":         str("Parágrafo inicial de 2-3 frases contextualizando o tema."),
			"caso_real":          str(`Descrição de um caso real ou situação prática e realista no Brasil sobre o tema (4-5 frases). Não use a expressão "Lembro de um caso...".`),
			"pontos_chave":       list(fmt.Sprintf("Lista com %d pontos chave importantes sobre o tema.", KeyPointsCount)),
			"como_prevenir":      list(fmt.Sprintf("Lista com %d ações práticas e diretas para prevenir o risco.", PreventionCount)),
			"perguntas_reflexao": list(fmt.Sprintf("Lista com %d perguntas que engajam a equipe e promovem discussão.", QuestionsCount)),
			"mensagem_final":     str("Uma frase final motivacional ou um chamado à ação impactante."),
			"nr_relacionada":     str(fmt.Sprintf(`A Norma Regulamentadora (NR) aplicável ao tema (ex: NR-35) ou "%s" se não houver uma específica.`, GeneralRegulation)),
		},
		PropertyOrdering: requiredFields,
		Required:         requiredFields,
	}
}

// reportWire mirrors Report with pointers so absent keys can be told apart
// from empty values.
type reportWire struct {
	Title          *string   `json:"titulo"`
	Introduction   *string   `json:"introducao"`
	CaseNarrative  *string   `json:"caso_real"`
	KeyPoints      *[]string `json:"pontos_chave"`
	Prevention     *[]string `json:"como_prevenir"`
	Questions      *[]string `json:"perguntas_reflexao"`
	ClosingMessage *string   `json:"mensagem_final"`
	Regulation     *string   `json:"nr_relacionada"`
}

// ParseReport decodes a model reply into a Report. Every field is required.
func ParseReport(text string) (Report, error) {
	var w reportWire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	var missing []string
	str := func(key string, p *string) string {
		if p == nil {
			missing = append(missing, key)
			return ""
		}
		return strings.TrimSpace(*p)
	}
	list := func(key string, p *[]string) []string {
		if p == nil {
			missing = append(missing, key)
			return nil
		}
		out := make([]string, 0, len(*p))
		for _, s := range *p {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	r := Report{
		Title:          str("titulo", w.Title),
		Introduction:   str("introducao", w.Introduction),
		CaseNarrative:  str("caso_real", w.CaseNarrative),
		KeyPoints:      list("pontos_chave", w.KeyPoints),
		Prevention:     list("como_prevenir", w.Prevention),
		Questions:      list("perguntas_reflexao", w.Questions),
		ClosingMessage: str("mensagem_final", w.ClosingMessage),
		Regulation:     str("nr_relacionada", w.Regulation),
	}
	if len(missing) > 0 {
		return Report{}, fmt.Errorf("%w: missing %s", ErrSchemaViolation, strings.Join(missing, ", "))
	}
	return r, nil
}

// cardinalityMismatches lists the lists whose length differs from the
// requested count.
func (r Report) cardinalityMismatches() []string {
	var out []string
	check := func(name string, got, want int) {
		if got != want {
			out = append(out, fmt.Sprintf("%s=%d (want %d)", name, got, want))
		}
	}
	check("pontos_chave", len(r.KeyPoints), KeyPointsCount)
	check("como_prevenir", len(r.Prevention), PreventionCount)
	check("perguntas_reflexao", len(r.Questions), QuestionsCount)
	return out
}
