package assistant

// Category is a mailbox label offered to the user for browsing.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var menuCategories = []Category{
	{ID: "INBOX", Label: "All Mails"},
	{ID: "IMPORTANT", Label: "Important"},
	{ID: "CATEGORY_PERSONAL", Label: "Work"},
	{ID: "CATEGORY_PROMOTIONS", Label: "Promotion"},
	{ID: "SPAM", Label: "Spam"},
}

// Accepted on selection but not offered in the menu.
var extraCategories = []Category{
	{ID: "CATEGORY_SOCIAL", Label: "Social"},
	{ID: "CATEGORY_UPDATES", Label: "Updates"},
}

// Categories returns the category menu.
func Categories() []Category {
	out := make([]Category, len(menuCategories))
	copy(out, menuCategories)

	return out
}

func lookupCategory(id string) (Category, bool) {
	for _, list := range [][]Category{menuCategories, extraCategories} {
		for _, c := range list {
			if c.ID == id {
				return c, true
			}
		}
	}

	return Category{}, false
}
