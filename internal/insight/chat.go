package insight

import (
	"context"
	"fmt"
	"strings"

	"budgetiq/internal/core"
	"budgetiq/internal/log"
)

// Intent is the classified purpose of a chat message.
type Intent string

const (
	IntentGreeting   Intent = "greeting"
	IntentOffTopic   Intent = "off_topic"
	IntentBalance    Intent = "balance"
	IntentSaving     Intent = "saving"
	IntentBreakdown  Intent = "breakdown"
	IntentIncome     Intent = "income"
	IntentTips       Intent = "tips"
	IntentComparison Intent = "comparison"
	IntentBudget     Intent = "budget"
	IntentMenu       Intent = "menu"
)

// RefusalMessage is returned verbatim for off-topic questions.
const RefusalMessage = "I'm your BudgetIQ financial assistant. I can only help with finance and budgeting topics. Please ask me about your budget, savings, expenses, or financial planning!"

const systemPrompt = `You are BudgetIQ AI, a professional personal finance assistant embedded inside the BudgetIQ budget management application.

ROLE & EXPERTISE:
- You are an expert in personal finance, budgeting, saving strategies, expense management, income planning, and financial literacy.
- You analyze the user's REAL financial data (provided below in the context) and give personalized, actionable advice.
- You speak in a warm, professional, and encouraging tone.

STRICT RULES:
1. ONLY answer questions related to personal finance, budgeting, saving, investing basics, expenses, income, debt management, or financial planning.
2. If the user asks about anything OUTSIDE finance/budgeting (e.g., coding, recipes, politics, weather, entertainment, etc.), respond EXACTLY with:
   "I'm your BudgetIQ financial assistant. I can only help with finance and budgeting topics. Please ask me about your budget, savings, expenses, or financial planning!"
3. NEVER make up financial data. Only reference numbers from the user data context provided below.
4. Keep responses concise (under 200 words) and well-formatted.
5. Use plain text formatting. Use line breaks for readability but no markdown.
6. When giving advice, be specific and actionable based on the user's actual numbers.
7. If the user has no data yet, encourage them to start adding income and expenses.
8. Always be encouraging and supportive about financial progress.`

var (
	greetingKeywords = []string{"hello", "hi ", "hey ", "how are you", "what's up"}

	// Non-finance topics the rule-based responder refuses. A greeting
	// anywhere in the message overrides this list.
	offTopicKeywords = []string{
		"weather", "recipe", "cook", "movie", "game", "sport", "music",
		"code", "program", "python", "java", "html", "css",
		"politics", "election", "president", "joke", "funny",
	}

	balanceKeywords    = []string{"balance", "how much", "left", "remaining", "total", "summary", "overview"}
	savingKeywords     = []string{"save", "saving", "savings", "reduce", "cut"}
	breakdownKeywords  = []string{"spending", "spent", "expense", "category", "breakdown", "where"}
	incomeKeywords     = []string{"income", "earn", "salary", "revenue"}
	tipsKeywords       = []string{"tip", "advice", "help", "suggest", "recommend", "guide"}
	comparisonKeywords = []string{"compare", "last month", "previous", "trend", "month over month"}
	budgetKeywords     = []string{"budget", "plan", "50-30-20", "rule", "allocat"}

	budgetingTips = []string{
		"Track every expense, no matter how small -- they add up!",
		"Follow the 50-30-20 rule: 50% needs, 30% wants, 20% savings.",
		"Set monthly spending limits for each category.",
		"Review your spending weekly to stay on track.",
		"Build an emergency fund worth 3-6 months of expenses.",
		"Avoid impulse purchases -- wait 24 hours before buying.",
		"Automate your savings by setting aside money on payday.",
	}
)

// ClassifyIntent maps a free-text message to an intent. First match in the
// fixed precedence order wins; reordering the checks changes observable
// behavior.
func ClassifyIntent(message string) Intent {
	msg := strings.ToLower(strings.TrimSpace(message))

	greeting := containsAny(msg, greetingKeywords)
	if !greeting && containsAny(msg, offTopicKeywords) {
		return IntentOffTopic
	}
	switch {
	case greeting:
		return IntentGreeting
	case containsAny(msg, balanceKeywords):
		return IntentBalance
	case containsAny(msg, savingKeywords):
		return IntentSaving
	case containsAny(msg, breakdownKeywords):
		return IntentBreakdown
	case containsAny(msg, incomeKeywords):
		return IntentIncome
	case containsAny(msg, tipsKeywords):
		return IntentTips
	case containsAny(msg, comparisonKeywords):
		return IntentComparison
	case containsAny(msg, budgetKeywords):
		return IntentBudget
	default:
		return IntentMenu
	}
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// Responder answers chat messages. When an LLM client is configured it is
// tried first with the user's context snapshot; any failure falls back to
// the rule-based templates, which are the correctness baseline.
type Responder struct {
	agg    *Aggregator
	llm    CompletionClient
	logger *log.Logger
}

// NewResponder builds a responder. llm may be nil, in which case only the
// rule-based path is used.
func NewResponder(agg *Aggregator, llm CompletionClient, logger *log.Logger) *Responder {
	return &Responder{agg: agg, llm: llm, logger: logger.WithComponent(log.ComponentChat)}
}

// Reply answers one chat message. Stateless; the caller owns any history.
func (r *Responder) Reply(ctx context.Context, userID int64, message string) (string, error) {
	if r.llm != nil {
		reply, err := r.llmReply(ctx, userID, message)
		if err == nil {
			return reply, nil
		}
		r.logger.Warn("llm reply failed, falling back to rules",
			log.FieldUserID, userID, log.FieldError, err)
	}
	return r.ruleBased(ctx, userID, message)
}

func (r *Responder) llmReply(ctx context.Context, userID int64, message string) (string, error) {
	snapshot, err := r.agg.BuildContextSnapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`%s

=== USER QUESTION ===
%s

Based on the financial data above, provide a helpful, personalized response. Remember:
- Only answer finance/budgeting questions
- Reference the user's actual numbers when relevant
- Be concise and actionable`, snapshot, message)

	return r.llm.Complete(ctx, systemPrompt, prompt)
}

func (r *Responder) ruleBased(ctx context.Context, userID int64, message string) (string, error) {
	intent := ClassifyIntent(message)
	if intent == IntentOffTopic {
		return RefusalMessage, nil
	}

	agg, err := r.agg.BuildAggregates(ctx, userID)
	if err != nil {
		return "", err
	}
	r.logger.Debug("rule-based reply", log.FieldUserID, userID, log.FieldIntent, string(intent))

	switch intent {
	case IntentGreeting:
		return renderGreeting(agg), nil
	case IntentBalance:
		return renderBalance(agg), nil
	case IntentSaving:
		return renderSaving(agg), nil
	case IntentBreakdown:
		return renderBreakdown(agg), nil
	case IntentIncome:
		return renderIncome(agg), nil
	case IntentTips:
		return renderTips(), nil
	case IntentComparison:
		return renderComparison(agg), nil
	case IntentBudget:
		return renderBudget(agg), nil
	default:
		return renderMenu(), nil
	}
}

func renderGreeting(a Aggregates) string {
	if a.Current.IncomeCents == 0 && a.Current.ExpenseCents == 0 {
		return "Hello! I'm your BudgetIQ AI assistant. I can help you with budgeting, saving strategies, and expense analysis.\n\n" +
			"Start by adding some income and expenses, then ask me anything about your finances!"
	}
	return fmt.Sprintf("Hello! Here's a quick snapshot of your finances:\n\n"+
		"  Income: %s\n  Expenses: %s\n  Balance: %s\n\n"+
		"How can I help you with your budget today?",
		core.FormatCents(a.Current.IncomeCents),
		core.FormatCents(a.Current.ExpenseCents),
		core.FormatCents(a.BalanceCents()))
}

func renderBalance(a Aggregates) string {
	if a.Current.IncomeCents == 0 && a.Current.ExpenseCents == 0 {
		return "You haven't added any income or expenses yet. Start tracking to see your balance!"
	}
	status := "You're in a healthy financial position!"
	if a.BalanceCents() <= 0 {
		status = "Your expenses exceed your income. Let's work on a plan to reduce spending."
	}
	return fmt.Sprintf("Here's your financial summary this month:\n\n"+
		"  Income: %s\n  Expenses: %s\n  Balance: %s\n\n%s",
		core.FormatCents(a.Current.IncomeCents),
		core.FormatCents(a.Current.ExpenseCents),
		core.FormatCents(a.BalanceCents()),
		status)
}

func renderSaving(a Aggregates) string {
	if len(a.Categories) == 0 {
		return "Add some expenses first so I can analyze where you can save!"
	}
	top := a.Categories[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Here's a personalized savings plan based on your data:\n\n"+
		"  1. Your top spending category is '%s' (%s)\n"+
		"     Reducing it by 20%% saves you %s\n\n"+
		"  2. Follow the 50-30-20 rule:\n"+
		"     50%% for needs, 30%% for wants, 20%% for savings\n",
		top.Category, core.FormatCents(top.Cents), core.FormatCents(top.Cents/5))
	if a.Current.IncomeCents > 0 {
		// Daily cap: 70% of monthly income spread over 30 days.
		daily := a.Current.IncomeCents * 7 / 300
		fmt.Fprintf(&b, "\n  3. Set a daily spending limit of %s", core.FormatCents(daily))
	}
	return b.String()
}

func renderBreakdown(a Aggregates) string {
	if len(a.Categories) == 0 {
		return "No expense data available yet. Start logging your expenses to see your spending patterns!"
	}
	total := a.BreakdownTotalCents()
	lines := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		lines = append(lines, fmt.Sprintf("  %s: %s (%s%%)",
			c.Category, core.FormatCents(c.Cents), pct0(c.Cents, total)))
	}
	return fmt.Sprintf("Your spending breakdown (last 30 days):\n\n%s\n\n  Total: %s",
		strings.Join(lines, "\n"), core.FormatCents(total))
}

func renderIncome(a Aggregates) string {
	if a.Current.IncomeCents == 0 {
		return "You haven't added any income this month. Add your income to get started with budgeting!"
	}
	return fmt.Sprintf("Your income this month: %s\n\n"+
		"  Spent: %s (%s%% of income)\n  Remaining: %s",
		core.FormatCents(a.Current.IncomeCents),
		core.FormatCents(a.Current.ExpenseCents),
		pct0(a.Current.ExpenseCents, a.Current.IncomeCents),
		core.FormatCents(a.BalanceCents()))
}

func renderTips() string {
	var b strings.Builder
	b.WriteString("Here are some expert budgeting tips:\n\n")
	for i, t := range budgetingTips {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %d. %s", i+1, t)
	}
	return b.String()
}

func renderComparison(a Aggregates) string {
	if a.Previous.ExpenseCents == 0 {
		return "Not enough data from last month to compare. Keep tracking and check back later!"
	}
	change := a.Current.ExpenseCents - a.Previous.ExpenseCents
	direction := "decreased"
	status := "Great progress on reducing expenses!"
	if change > 0 {
		direction = "increased"
		status = "Consider reviewing your spending habits."
	}
	abs := change
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("Month-over-month comparison:\n\n"+
		"  Last month expenses: %s\n  This month expenses: %s\n"+
		"  Change: %s by %s (%.1f%%)\n\n%s",
		core.FormatCents(a.Previous.ExpenseCents),
		core.FormatCents(a.Current.ExpenseCents),
		direction, core.FormatCents(abs),
		float64(abs)/float64(a.Previous.ExpenseCents)*100,
		status)
}

func renderBudget(a Aggregates) string {
	if a.Current.IncomeCents == 0 {
		return "Add your income first, and I'll help you create a budget plan based on the 50-30-20 rule!"
	}
	income := a.Current.IncomeCents
	return fmt.Sprintf("Here's a recommended budget based on your income (%s):\n\n"+
		"  Needs (50%%):    %s  -- rent, groceries, utilities\n"+
		"  Wants (30%%):    %s  -- dining, entertainment, shopping\n"+
		"  Savings (20%%):  %s  -- emergency fund, investments\n\n"+
		"Currently spending: %s (%s%% of income)",
		core.FormatCents(income),
		core.FormatCents(income/2),
		core.FormatCents(income*3/10),
		core.FormatCents(income/5),
		core.FormatCents(a.Current.ExpenseCents),
		pct0(a.Current.ExpenseCents, income))
}

func renderMenu() string {
	return "I'm your BudgetIQ financial assistant! Here's what I can help with:\n\n" +
		"  - Your balance or financial summary\n" +
		"  - Personalized saving strategies\n" +
		"  - Spending breakdown by category\n" +
		"  - Income analysis\n" +
		"  - Month-over-month comparison\n" +
		"  - Budget planning (50-30-20 rule)\n" +
		"  - Expert budgeting tips\n\n" +
		"Try asking: \"How can I save more?\" or \"Show my spending breakdown\""
}
