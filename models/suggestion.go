package models

// Suggestion is a canned prompt shown when a conversation is empty.
type Suggestion struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// Suggestions is the built-in suggestion set, in display order.
var Suggestions = []Suggestion{
	{
		ID:          "mothers-day",
		Title:       "Mother's Day",
		Description: "Heartfelt appreciation cards",
		Prompt:      "Design a Mother's Day card that celebrates the unique bond between mother and child. Include elements that represent nurturing, love, and gratitude, with a message that acknowledges her sacrifices and expresses deep appreciation for her unconditional love.",
	},
	{
		ID:          "fathers-day",
		Title:       "Father's Day",
		Description: "Personalized dad memories",
		Prompt:      "Create a Father's Day card that captures special father-child moments. Include elements that represent strength, guidance, and shared memories, with a message that highlights his role as a mentor and expresses gratitude for his support and wisdom.",
	},
	{
		ID:          "birthday",
		Title:       "Birthday",
		Description: "Celebratory wishes",
		Prompt:      "Design a birthday card that radiates joy and celebration. Include festive elements like balloons, confetti, and bright colors, with a message that expresses warm wishes for happiness, health, and success in the coming year.",
	},
	{
		ID:          "christmas",
		Title:       "Christmas",
		Description: "Festive holiday greetings",
		Prompt:      "Create a Christmas card that captures the magic of the season. Include traditional holiday elements like snowflakes, ornaments, and warm lighting, with a message that spreads joy, peace, and goodwill to all.",
	},
	{
		ID:          "thanksgiving",
		Title:       "Thanksgiving",
		Description: "Gratitude expressions",
		Prompt:      "Design a Thanksgiving card that focuses on gratitude and togetherness. Include elements that represent harvest, family, and abundance, with a message that expresses thankfulness for blessings and the importance of shared moments.",
	},
	{
		ID:          "new-year",
		Title:       "New Year",
		Description: "Fresh start messages",
		Prompt:      "Create a New Year's card that symbolizes new beginnings and hope. Include elements that represent time, renewal, and optimism, with a message that inspires positive change and celebrates the possibilities of the coming year.",
	},
	{
		ID:          "anniversary",
		Title:       "Anniversary",
		Description: "Timeless love stories",
		Prompt:      "Design an anniversary card that celebrates enduring love. Include elements that represent time, commitment, and shared memories, with a message that reflects on the journey together and looks forward to many more years of happiness.",
	},
}
