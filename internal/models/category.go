package models

// Category represents a transaction category. The valid set depends on the
// transaction type.
type Category string

const (
	CategorySalary     Category = "Salary"
	CategoryFreelance  Category = "Freelance"
	CategoryInvestment Category = "Investment"
	CategoryBusiness   Category = "Business"
	CategoryGift       Category = "Gift"

	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills & Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryTravel        Category = "Travel"

	CategoryOther Category = "Other"
)

// categoriesByType is the lookup table of allowed categories per type.
var categoriesByType = map[TransactionType][]Category{
	TypeIncome: {
		CategorySalary,
		CategoryFreelance,
		CategoryInvestment,
		CategoryBusiness,
		CategoryGift,
		CategoryOther,
	},
	TypeExpense: {
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealthcare,
		CategoryEducation,
		CategoryTravel,
		CategoryOther,
	},
}

// CategoriesFor returns a copy of the categories allowed for the given type.
// An unknown type yields nil.
func CategoriesFor(t TransactionType) []Category {
	cats, ok := categoriesByType[t]
	if !ok {
		return nil
	}
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

// Allows reports whether c belongs to the category set of type t.
func (t TransactionType) Allows(c Category) bool {
	for _, allowed := range categoriesByType[t] {
		if allowed == c {
			return true
		}
	}
	return false
}
