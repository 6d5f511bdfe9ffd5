package tutor

// curriculum maps each teachable skill to its ordered topic list. Completing
// every topic of a skill earns its badge once.
var curriculum = map[string][]string{
	"python": {
		"Variables & Data Types",
		"Conditionals",
		"Loops",
		"Functions",
		"Lists & Dictionaries",
	},
	"javascript": {
		"Variables & Types",
		"Functions & Scope",
		"Arrays & Objects",
		"Async & Promises",
	},
	"dsa": {
		"Arrays & Strings",
		"Linked Lists",
		"Stacks & Queues",
		"Recursion",
		"Binary Search",
	},
}

// TopicsFor returns the ordered topics for a skill, nil for unknown skills.
func TopicsFor(skill string) []string {
	return curriculum[skill]
}

// BadgeFor names the badge earned by finishing every topic of a skill.
func BadgeFor(skill string) string {
	return skill + "-master"
}
