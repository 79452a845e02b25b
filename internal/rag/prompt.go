package rag

import (
	"fmt"

	"github.com/askksa/askksa/internal/models"
)

const baseSystemInstruction = `You are AskKSA, an assistant that answers questions about Saudi Arabia
visas, Iqama, passports, visit visas, fines, and government services.

Rules:
- Use ONLY the information from the provided context.
- If the answer is not clearly in the context, say you are not sure.
- %s
- Keep answers clear and step-by-step where possible.
- Do not invent rules or details that are not present in the context.`

const userPromptTemplate = `You will be given context from Absher / Saudi services articles.
Use this context to answer the user question.

Context:
%s

User question: %s

Answer ONLY using the above context.`

const (
	langRuleUrdu    = "Always answer in **Urdu using Urdu script** (the user asked in Urdu)."
	langRuleEnglish = "Always answer in **English** (the user asked in English)."
)

// BuildMessages composes the prompt for one turn: the system instruction
// with the language rule for the query's script, the filtered history with
// roles preserved, then a final user message embedding the grounding
// context and the literal question.
func BuildMessages(query, contextText string, isRTL bool, history []models.ConversationTurn) []models.Message {
	rule := langRuleEnglish
	if isRTL {
		rule = langRuleUrdu
	}

	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(baseSystemInstruction, rule),
	})
	for _, turn := range history {
		messages = append(messages, models.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, models.Message{
		Role:    models.RoleUser,
		Content: fmt.Sprintf(userPromptTemplate, contextText, query),
	})
	return messages
}
