package chat

import (
	"strings"

	"github.com/poiesic/pdfrag/core"
	"github.com/tmc/langchaingo/prompts"
)

// Template variables.
const (
	VarContext  = "contexto"
	VarQuestion = "pergunta"
)

// DefaultTemplate restricts the model to the retrieved context and asks it
// to admit when the answer is not there.
const DefaultTemplate = `CONTEXTO:
{{.contexto}}

REGRAS:
- Responda somente com base no CONTEXTO.
- Se a informação não estiver explicitamente no CONTEXTO, responda:
  "Não tenho informações necessárias para responder sua pergunta."
- Nunca invente ou use conhecimento externo.
- Nunca produza opiniões ou interpretações além do que está escrito.

EXEMPLOS DE PERGUNTAS FORA DO CONTEXTO:
Pergunta: "Qual é a capital da França?"
Resposta: "Não tenho informações necessárias para responder sua pergunta."

Pergunta: "Você acha isso bom ou ruim?"
Resposta: "Não tenho informações necessárias para responder sua pergunta."

PERGUNTA DO USUÁRIO:
{{.pergunta}}

RESPONDA A "PERGUNTA DO USUÁRIO"`

// NewPrompt returns the default question-answering prompt.
func NewPrompt() prompts.PromptTemplate {
	return NewPromptFromTemplate(DefaultTemplate)
}

// NewPromptFromTemplate builds a prompt from a Go template that references
// .contexto and .pergunta.
func NewPromptFromTemplate(template string) prompts.PromptTemplate {
	return prompts.NewPromptTemplate(template, []string{VarContext, VarQuestion})
}

// BuildContext joins chunk texts with newlines in rank order. Scores are ignored.
func BuildContext(results []*core.SearchResult) string {
	texts := make([]string, 0, len(results))
	for _, result := range results {
		if result == nil || result.Chunk == nil {
			continue
		}
		texts = append(texts, result.Chunk.Content)
	}
	return strings.Join(texts, "\n")
}

// IsExitCommand reports whether input ends the session. The match is
// case-insensitive but otherwise exact: " sair" is a question.
func IsExitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "sair", "exit", "quit":
		return true
	}
	return false
}
