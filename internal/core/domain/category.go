package domain

// CategoryKind partitions categories into spending and earning groups.
type CategoryKind string

const (
	CategoryExpense CategoryKind = "EXPENSE"
	CategoryIncome  CategoryKind = "INCOME"
)

// Category is informational display metadata for a category label.
// Transactions reference categories by name, not by ID; deleting a Category
// row does not invalidate transactions carrying its name.
type Category struct {
	CategoryID int64        `json:"categoryID"`
	Name       CategoryName `json:"name"`
	Icon       string       `json:"icon"`
	Kind       CategoryKind `json:"kind"`
}
