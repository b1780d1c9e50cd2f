package nlu

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/ledgervox/internal/model"
	"github.com/Veraticus/ledgervox/internal/service"
)

// System messages and sampling settings for each AI call. Temperatures are
// deliberately low for classification-shaped calls and looser for the
// conversational query answers.
const (
	intentSystemMessage = "You classify user intent accurately. Respond with JSON only."
	intentTemperature   = 0.1
	intentMaxTokens     = 50

	extractSystemMessage = "You are a warm, friendly financial assistant having a natural conversation. " +
		"You sound like a helpful friend, not a robot. Keep responses brief, casual, and varied."
	extractTemperature = 0.3
	extractMaxTokens   = 200

	deleteSystemMessage = "You help identify which expense to delete based on user description."
	deleteTemperature   = 0.2
	deleteMaxTokens     = 100

	querySystemMessage = "You are a helpful financial assistant providing brief, friendly answers about expenses."
	queryTemperature   = 0.5
	queryMaxTokens     = 150
)

// intentPrompt asks the model to classify an utterance into the closed
// intent set.
func intentPrompt(input string) string {
	return fmt.Sprintf(`Classify the user's intent from their input.

USER INPUT: %q

INTENTS:
1. ADD_EXPENSE - logging a new expense ("I spent $50 on coffee", "Gas was $60")
2. QUERY - asking about spending ("How much did I spend on food?", "What's my total?")
3. DELETE_EXPENSE - removing an expense ("Delete the pizza expense", "Remove last expense")
4. HELP - asking what the assistant can do
5. UNKNOWN - cannot determine intent

RULES:
- If mentions "delete", "remove", "cancel", "undo" -> DELETE_EXPENSE
- If mentions spending/buying WITH an amount -> ADD_EXPENSE
- If asks questions about money -> QUERY

OUTPUT (JSON only):
{"intent": "DELETE_EXPENSE", "confidence": 0.95}`, input)
}

// extractPrompt asks the model to turn an utterance into a structured
// expense constrained to the fixed category enumeration.
func extractPrompt(input string) string {
	return fmt.Sprintf(`You are a friendly financial assistant. The user is telling you about an expense they just made.

USER SAID: %q

YOUR TASK:
1. Extract the amount spent (handle "$50", "fifty dollars", "50 bucks", "about 50")
2. Identify the merchant/business name if mentioned, properly capitalized; if no clear merchant, use the main subject ("coffee" -> "Coffee")
3. Categorize the expense into exactly one of these categories:
%s
4. Write a short, warm, varied confirmation message (1-2 sentences, not robotic, no "Transaction recorded")

CATEGORIZATION RULES:
- Coffee shops, restaurants, groceries, takeout -> Food & Dining
- Gas, Uber, parking, public transit -> Transportation
- Clothes, electronics, household items, online shopping -> Shopping
- Movies, concerts, games, streaming services -> Entertainment
- Rent, electricity, water, internet, phone bills -> Bills & Utilities
- Doctor visits, pharmacy, medical supplies -> Healthcare
- Books, courses, tuition -> Education
- Haircuts, gym, spa, beauty products -> Personal Care
- Hotels, flights, vacation expenses -> Travel
- Anything unclear -> Other

EXAMPLE:
Input: "I spent $50 on Starbucks"
Output: {"amount": 50, "merchant": "Starbucks", "category": "Food & Dining", "message": "Nice! Logged that $50 Starbucks run."}

OUTPUT FORMAT (pure JSON, no explanation, no markdown):
{"amount": <number>, "merchant": "<string>", "category": "<one of the categories above>", "message": "<natural confirmation>"}`,
		input, categoryList())
}

// deletePrompt presents the most recent expenses as a numbered list and asks
// for a 1-based index into that list, or null when ambiguous.
func deletePrompt(input string, recent []model.Expense) string {
	var sb strings.Builder
	for i, e := range recent {
		fmt.Fprintf(&sb, "%d. $%s - %s (%s) on %s\n", i+1, formatAmount(e.Amount), e.Merchant, e.Category, e.Date)
	}

	return fmt.Sprintf(`User wants to delete an expense. Identify which one.

USER SAID: %q

RECENT EXPENSES:
%s
RULES:
- Match by merchant name, amount, or category
- If says "last" or "recent" -> pick most recent (highest index)
- If unclear, return expenseIndex: null

OUTPUT (JSON only):
{"expenseIndex": 5, "confidence": 0.9, "message": "Deleted $12 Pizza Hut expense."}

If you can't determine which expense:
{"expenseIndex": null, "confidence": 0, "message": "Which expense do you want to delete? I found multiple."}`,
		input, sb.String())
}

// queryPrompt supplies spending aggregates and the most recent expenses as
// context for answering a question.
func queryPrompt(question string, expenses []model.Expense) string {
	summary := service.Summarize(expenses)

	byCategory, _ := json.Marshal(summary.ByCategory)

	recent := expenses
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	recentJSON, _ := json.Marshal(recent)

	return fmt.Sprintf(`You are a friendly financial assistant answering a user's question about their expenses.

USER QUESTION: %q

EXPENSES DATA:
- Total expenses: %d
- Total amount: $%.2f
- By category: %s
- Recent expenses: %s

Answer naturally and briefly (1-2 sentences), with specific numbers. If the
question is about a specific category, focus on that category.`,
		question, summary.Count, summary.Total, byCategory, recentJSON)
}

// categoryList renders the enumeration as a bulleted list for prompts.
func categoryList() string {
	var sb strings.Builder
	for _, c := range model.Categories() {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	return strings.TrimRight(sb.String(), "\n")
}
