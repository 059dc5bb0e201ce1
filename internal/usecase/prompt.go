package usecase

import (
	"strings"

	"consultant-chat/internal/domain"
)

// FallbackReply is returned when the model answered but no text could be
// extracted from its response.
const FallbackReply = "Не удалось получить ответ. Попробуйте ещё раз или напишите на контакты с сайта."

func buildSystemPrompt(knowledgeText string) string {
	return strings.Join([]string{
		"Ты вежливый консультант по имени Никифор Удалой на сайте-визитке.",
		"",
		"ПРАВИЛА:",
		behaviorRules(),
		"",
		"Данные:",
		knowledgeText,
	}, "\n")
}

func behaviorRules() string {
	return strings.Join([]string{
		"1. Отвечай ТОЛЬКО на основе информации ниже.",
		"2. Не выдумывай услуги, цены или факты.",
		"3. Если информации нет — скажи \"Уточните, пожалуйста, у меня нет этих данных\" и предложи связаться по контактам с сайта.",
		"4. Отвечай кратко, по-русски.",
		"5. В конце при необходимости предлагай написать на email или в соцсети.",
	}, "\n")
}

func buildPromptMessages(systemPrompt, message string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Name: domain.NameAssistant, Content: systemPrompt},
		{Role: domain.RoleUser, Name: domain.NameUser, Content: message},
	}
}
