package consent

import "sort"

var templates = map[string]Template{
	"budgeting": {
		Key:                  "budgeting",
		Purpose:              "budgeting_app_access",
		Description:          "Access to transaction history for budgeting applications",
		DataScope:            []string{"transactions", "balances"},
		RetentionDays:        365,
		Revocable:            true,
		ThirdPartyCategories: []string{"budgeting", "financial_planning"},
	},
	"payment_initiation": {
		Key:                  "payment_initiation",
		Purpose:              "payment_initiation",
		Description:          "Initiate payments on behalf of the user",
		DataScope:            []string{"accounts", "balances"},
		RetentionDays:        90,
		Revocable:            true,
		ThirdPartyCategories: []string{"payment_processor"},
	},
	"account_info": {
		Key:                  "account_info",
		Purpose:              "account_information",
		Description:          "Access to account information and balances",
		DataScope:            []string{"accounts", "balances"},
		RetentionDays:        180,
		Revocable:            true,
		ThirdPartyCategories: []string{"account_aggregator", "financial_advisor"},
	},
}

// LookupTemplate returns the template registered under key.
func LookupTemplate(key string) (Template, bool) {
	t, ok := templates[key]
	return t, ok
}

// TemplateKeys lists the registered template keys in sorted order.
func TemplateKeys() []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
