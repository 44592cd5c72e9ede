package core

// Built-in category catalog. These entries are seeded into every new ledger
// and their ids are permanently protected from removal.
var builtinCategories = []Category{
	{ID: "food", Name: "Еда", Type: Expense, Icon: "utensils-crossed", Color: "#f97316"},
	{ID: "transport", Name: "Транспорт", Type: Expense, Icon: "car", Color: "#3b82f6"},
	{ID: "shopping", Name: "Покупки", Type: Expense, Icon: "shopping-bag", Color: "#ec4899"},
	{ID: "entertainment", Name: "Развлечения", Type: Expense, Icon: "gamepad-2", Color: "#8b5cf6"},
	{ID: "health", Name: "Здоровье", Type: Expense, Icon: "pill", Color: "#ef4444"},
	{ID: "utilities", Name: "ЖКХ", Type: Expense, Icon: "home", Color: "#06b6d4"},
	{ID: "finance", Name: "Финансы", Type: Expense, Icon: "credit-card", Color: "#8b5cf6"},
	{ID: "travel", Name: "Путешествия", Type: Expense, Icon: "plane", Color: "#06b6d4"},
	{ID: "education", Name: "Образование", Type: Expense, Icon: "graduation-cap", Color: "#3b82f6"},
	{ID: "family", Name: "Семья", Type: Expense, Icon: "heart", Color: "#ec4899"},
	{ID: "coffee", Name: "Кафе", Type: Expense, Icon: "coffee", Color: "#a855f7"},
	{ID: "clothing", Name: "Одежда", Type: Expense, Icon: "shirt", Color: "#f59e0b"},
	{ID: "fuel", Name: "Топливо", Type: Expense, Icon: "fuel", Color: "#ef4444"},
	{ID: "other-expense", Name: "Прочее", Type: Expense, Icon: "package", Color: "#6b7280"},

	{ID: "salary", Name: "Зарплата", Type: Income, Icon: "banknote", Color: "#10b981"},
	{ID: "bonus", Name: "Бонус", Type: Income, Icon: "gift", Color: "#f59e0b"},
	{ID: "investment", Name: "Инвестиции", Type: Income, Icon: "trending-up", Color: "#22c55e"},
	{ID: "freelance", Name: "Фриланс", Type: Income, Icon: "laptop", Color: "#a855f7"},
	{ID: "other-income", Name: "Прочее", Type: Income, Icon: "dollar-sign", Color: "#84cc16"},
}

var builtinIDs = func() map[string]struct{} {
	ids := make(map[string]struct{}, len(builtinCategories))
	for _, c := range builtinCategories {
		ids[c.ID] = struct{}{}
	}
	return ids
}()

// DefaultCategories returns a fresh copy of the built-in catalog.
func DefaultCategories() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// IsBuiltinCategory reports whether id belongs to the protected catalog.
func IsBuiltinCategory(id string) bool {
	_, ok := builtinIDs[id]
	return ok
}
