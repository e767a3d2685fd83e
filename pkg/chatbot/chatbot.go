// Package chatbot answers storefront questions by keyword.
package chatbot

import "strings"

type rule struct {
	keywords []string
	response string
}

// Rules are checked in order; the first rule with a keyword contained in the message wins.
var rules = []rule{
	{[]string{"hello", "hi"}, "Hello! Welcome to Borabyte. How can I help you today?"},
	{[]string{"laptop", "computer"}, "We have a great selection of laptops in new, refurbished, and used conditions. Would you like me to recommend some based on your budget?"},
	{[]string{"phone", "smartphone"}, "I'd be happy to help you find a smartphone. We carry all major brands including Apple, Samsung, and Google. Do you have a specific brand in mind?"},
	{[]string{"headphone", "audio"}, "Our headphone collection includes noise-cancelling, wireless, and gaming options from brands like Sony, Bose, and Apple."},
	{[]string{"refurbished"}, "Our refurbished products are thoroughly tested and come with a 90-day warranty. They're a great way to save money while still getting quality electronics."},
	{[]string{"price", "cost"}, "We offer competitive pricing across all conditions. New items come with full manufacturer warranties, refurbished items have a 90-day warranty, and used items are priced based on condition."},
	{[]string{"warranty"}, "New products come with full manufacturer warranties. Refurbished products include a 90-day warranty. Used products have a 30-day return policy for any functional issues."},
	{[]string{"return", "refund"}, "We offer a 30-day return policy on all products. If you're not satisfied, you can return the item for a full refund or exchange."},
}

const fallback = "I'm here to help with any questions about our electronics. You can ask about specific products, warranties, shipping, returns, or get recommendations based on your needs."

func Reply(message string) string {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.response
			}
		}
	}
	return fallback
}
